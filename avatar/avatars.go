package avatar

import (
	"crowdfundx/bizerror"
	"crowdfundx/client/s3"
	"crowdfundx/domain"
	"crowdfundx/session"
	"io"
	"io/ioutil"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

var (
	DetailAvatarFunc = DetailAvatar
	CreateAvatarFunc = CreateAvatar
)

func DetailAvatar(id types.ID, s *session.Session) ([]byte, error) {
	r, err := s3.GetObjectFunc("avatars/"+id.String()+".png", s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ioutil.ReadAll(r)
}

// CreateAvatar stores the uploaded image; a user may only replace their own.
func CreateAvatar(id types.ID, r io.Reader, s *session.Session) error {
	if id != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return s3.PutObjectFunc("avatars/"+id.String()+".png", r, s)
}
