package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

/*************
 * Fake rpc client
 *************/

type fakeRPC struct {
	lastSignupReq *structpb.Struct
	lastLoginReq  *structpb.Struct

	signupResp *structpb.Struct
	signupErr  error

	loginResp *structpb.Struct
	loginErr  error

	meResp *structpb.Struct
	meErr  error
}

func (f *fakeRPC) Signup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastSignupReq = in
	return f.signupResp, f.signupErr
}

func (f *fakeRPC) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastLoginReq = in
	return f.loginResp, f.loginErr
}

func (f *fakeRPC) Me(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return f.meResp, f.meErr
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AddsBearerHeader(t *testing.T) {
	c := &GRPCClient{}
	c.SetAccessToken("A1")

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"Bearer A1"}, md.Get(common.AuthorizationHeaderName))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, "Bearer stale")
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AuthorizationHeaderName))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_PassesErrorsThrough(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Equal(t, codes.Internal, status.Code(err))
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.NoError(t, c.mapError(nil))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.Equal(t, ErrAlreadyExists, c.mapError(status.Error(codes.AlreadyExists, "x")))

	err := c.mapError(status.Error(codes.InvalidArgument, "password is required"))
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorContains(t, err, "password is required")

	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
}

/*************
 * Signup / Login / Me tests
 *************/

func TestSignup_Success(t *testing.T) {
	f := &fakeRPC{signupResp: mustStruct(t, map[string]any{
		pb.FieldUsername: "alice",
		pb.FieldEmail:    "a@x.com",
		pb.FieldDisabled: false,
	})}
	c := &GRPCClient{client: f}

	acc, err := c.Signup(context.Background(), "alice", "pw", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", acc.Username)
	require.Equal(t, "a@x.com", acc.Email)
	require.False(t, acc.Disabled)

	require.Equal(t, "alice", pb.StringField(f.lastSignupReq, pb.FieldUsername))
	require.Equal(t, "pw", pb.StringField(f.lastSignupReq, pb.FieldPassword))
	require.Equal(t, "a@x.com", pb.StringField(f.lastSignupReq, pb.FieldEmail))
}

func TestSignup_MapsError(t *testing.T) {
	f := &fakeRPC{signupErr: status.Error(codes.AlreadyExists, "taken")}
	c := &GRPCClient{client: f}
	_, err := c.Signup(context.Background(), "alice", "pw", "a@x.com")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogin_StoresToken(t *testing.T) {
	f := &fakeRPC{loginResp: mustStruct(t, map[string]any{
		pb.FieldAccessToken: "tok",
		pb.FieldTokenType:   common.TokenType,
	})}
	c := &GRPCClient{client: f}

	token, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok", token)
	require.Equal(t, "tok", c.token())
	require.Equal(t, "alice", pb.StringField(f.lastLoginReq, pb.FieldUsername))
	require.Equal(t, "pw", pb.StringField(f.lastLoginReq, pb.FieldPassword))
}

func TestLogin_EmptyToken(t *testing.T) {
	f := &fakeRPC{loginResp: mustStruct(t, map[string]any{})}
	c := &GRPCClient{client: f}
	_, err := c.Login(context.Background(), "alice", "pw")
	require.ErrorContains(t, err, "empty access_token")
	require.Empty(t, c.token())
}

func TestLogin_MapsError(t *testing.T) {
	f := &fakeRPC{loginErr: status.Error(codes.Unauthenticated, "incorrect username or password")}
	c := &GRPCClient{client: f}
	c.SetAccessToken("old")
	_, err := c.Login(context.Background(), "alice", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "old", c.token())
}

func TestMe(t *testing.T) {
	f := &fakeRPC{meResp: mustStruct(t, map[string]any{pb.FieldUsername: "alice", pb.FieldDisabled: true})}
	c := &GRPCClient{client: f}
	acc, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", acc.Username)
	require.True(t, acc.Disabled)

	f.meErr = status.Error(codes.Unavailable, "down")
	_, err = c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClose_WithoutConnection(t *testing.T) {
	require.NoError(t, (&GRPCClient{}).Close())
}

/*************
 * Over a real connection
 *************/

type echoAuthServer struct {
	gotAuth chan []string
}

func (s *echoAuthServer) Signup(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return in, nil
}

func (s *echoAuthServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{pb.FieldAccessToken: "issued", pb.FieldTokenType: common.TokenType})
}

func (s *echoAuthServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	s.gotAuth <- md.Get(common.AuthorizationHeaderName)
	return structpb.NewStruct(map[string]any{pb.FieldUsername: "alice"})
}

func TestGRPCClient_OverBufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	fake := &echoAuthServer{gotAuth: make(chan []string, 1)}
	pb.RegisterAuthServiceServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c := &GRPCClient{endpointURL: "passthrough:///bufnet"}
	err := c.InitGRPCClient(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	acc, err := c.Signup(ctx, "alice", "pw", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", acc.Email)

	_, err = c.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	acc, err = c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", acc.Username)
	require.Equal(t, []string{"Bearer issued"}, <-fake.gotAuth)
}
