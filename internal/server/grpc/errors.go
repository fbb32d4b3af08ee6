package grpc

import (
	"errors"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps the error taxonomy onto gRPC codes. Internal failures that
// carry no service message are reported generically.
func toStatus(err error) error {
	kind := common.KindOf(err)

	var code codes.Code
	switch kind {
	case common.ErrorBadRequest:
		code = codes.InvalidArgument
	case common.ErrorUnauthorized:
		code = codes.Unauthenticated
	case common.ErrorConflict:
		code = codes.AlreadyExists
	case common.ErrorNotFound:
		code = codes.NotFound
	default:
		code = codes.Internal
	}

	msg := kind.Error()
	var e *common.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}

	return status.Error(code, msg)
}
