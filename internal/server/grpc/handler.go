package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	username := pb.StringField(req, pb.FieldUsername)

	account, err := s.auth.Signup(ctx, username, pb.StringField(req, pb.FieldPassword), pb.StringField(req, pb.FieldEmail))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, status.Error(codes.AlreadyExists, "username already registered")
		case errors.Is(err, common.ErrorValidation):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		default:
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	return accountStruct(account)
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	token, err := s.auth.Login(ctx, pb.StringField(req, pb.FieldUsername), pb.StringField(req, pb.FieldPassword))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, status.Error(codes.Unauthenticated, "incorrect username or password")
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return structpb.NewStruct(map[string]any{
		pb.FieldAccessToken: token,
		pb.FieldTokenType:   common.TokenType,
	})
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	account, ok := accountFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "could not validate credentials")
	}
	return accountStruct(account)
}

func accountStruct(a *models.PublicAccount) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		pb.FieldUsername: a.Username,
		pb.FieldEmail:    a.Email,
		pb.FieldDisabled: a.Disabled,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
