// Package grpcutil holds the pieces shared by the hand-registered gRPC
// services: error translation, caller identity and Struct field access.
package grpcutil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
	errorDomain      = "airwallet"
)

// TokenVerifier checks a bearer token and returns the user id it was issued to.
type TokenVerifier func(token string) (int64, error)

type userIDKey struct{}

func codeFor(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindAuthorization:
		return codes.PermissionDenied
	case domain.KindConflict:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// Status converts a core error into a gRPC status error. Insufficient funds
// carries the balance in an ErrorInfo detail.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	st := status.New(codeFor(domain.KindOf(err)), domain.PublicMessage(err))
	info := &errdetails.ErrorInfo{Reason: domain.CodeOf(err), Domain: errorDomain}

	var fe *domain.InsufficientFundsError
	if errors.As(err, &fe) {
		info.Metadata = map[string]string{
			"balance":  strconv.FormatInt(fe.Balance, 10),
			"required": strconv.FormatInt(fe.Required, 10),
		}
	}
	if detailed, derr := st.WithDetails(info); derr == nil {
		st = detailed
	}
	return st.Err()
}

// UserID returns the caller id that UnaryAuth verified for this request.
func UserID(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	if !ok || id <= 0 {
		return 0, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}

// WithToken attaches a bearer token to outgoing metadata.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, bearerPrefix+token)
}

// UnaryAuth verifies the bearer token on every call outside the public
// services and stores the token's user id in the request context.
func UnaryAuth(verify TokenVerifier, publicServices ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(publicServices))
	for _, name := range publicServices {
		public[name] = true
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if public[serviceOf(info.FullMethod)] {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get(authorizationKey)
		if len(values) == 0 || !strings.HasPrefix(values[0], bearerPrefix) {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		userID, err := verify(strings.TrimSpace(strings.TrimPrefix(values[0], bearerPrefix)))
		if err != nil || userID <= 0 {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, userIDKey{}, userID), req)
	}
}

// serviceOf extracts "pkg.Service" from "/pkg.Service/Method".
func serviceOf(fullMethod string) string {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

func UnaryLogging(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("RPC failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("RPC handled", fields...)
		}
		return resp, err
	}
}

// Int64 reads a whole number from a Struct field.
func Int64(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return int64(f), nil
}

// String reads a field as text. Numbers are formatted without exponent.
func String(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}

// Timestamp formats t the way the REST API does.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
