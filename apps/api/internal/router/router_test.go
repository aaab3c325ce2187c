package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ClipServer/apps/api/internal/dto"
	v1 "ClipServer/apps/api/internal/handler/v1"
	"ClipServer/apps/api/internal/service"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/config"
	"ClipServer/consts"
	"ClipServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== 假 Service ====================

type fakeAuthService struct {
	ensureAnonymousFn func(context.Context, string) (*dto.AuthResponse, error)
	registerFn        func(context.Context, *dto.RegisterRequest) (*dto.AuthResponse, error)
	loginFn           func(context.Context, *dto.LoginRequest) (*dto.AuthResponse, error)
}

var _ service.IAuthService = (*fakeAuthService)(nil)

func (f *fakeAuthService) EnsureAnonymous(ctx context.Context, deviceId string) (*dto.AuthResponse, error) {
	if f.ensureAnonymousFn == nil {
		return &dto.AuthResponse{}, nil
	}
	return f.ensureAnonymousFn(ctx, deviceId)
}

func (f *fakeAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if f.registerFn == nil {
		return &dto.AuthResponse{}, nil
	}
	return f.registerFn(ctx, req)
}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if f.loginFn == nil {
		return &dto.AuthResponse{}, nil
	}
	return f.loginFn(ctx, req)
}

type fakeUserService struct {
	getProfileFn    func(context.Context, int64) (*dto.UserProfile, error)
	updateProfileFn func(context.Context, int64, *dto.UpdateProfileRequest) (*dto.UserProfile, error)
	searchUsersFn   func(context.Context, int64, *dto.SearchUsersRequest) (*dto.SearchUsersResponse, error)
}

var _ service.IUserService = (*fakeUserService)(nil)

func (f *fakeUserService) GetProfile(ctx context.Context, userId int64) (*dto.UserProfile, error) {
	if f.getProfileFn == nil {
		return &dto.UserProfile{Id: userId}, nil
	}
	return f.getProfileFn(ctx, userId)
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userId int64, req *dto.UpdateProfileRequest) (*dto.UserProfile, error) {
	if f.updateProfileFn == nil {
		return &dto.UserProfile{Id: userId}, nil
	}
	return f.updateProfileFn(ctx, userId, req)
}

func (f *fakeUserService) SearchUsers(ctx context.Context, actingUserId int64, req *dto.SearchUsersRequest) (*dto.SearchUsersResponse, error) {
	if f.searchUsersFn == nil {
		return &dto.SearchUsersResponse{}, nil
	}
	return f.searchUsersFn(ctx, actingUserId, req)
}

type fakeFriendService struct {
	sendRequestFn    func(context.Context, int64, int64) (*dto.FriendRequestView, error)
	acceptRequestFn  func(context.Context, int64, int64) (*dto.FriendRequestView, error)
	declineRequestFn func(context.Context, int64, int64) (*dto.FriendRequestView, error)
	removeFriendFn   func(context.Context, int64, int64) (*dto.RemoveFriendResponse, error)
	listFriendsFn    func(context.Context, int64) (*dto.FriendListResponse, error)
	listRequestsFn   func(context.Context, int64, bool) (*dto.FriendRequestListResponse, error)
}

var _ service.IFriendService = (*fakeFriendService)(nil)

func (f *fakeFriendService) SendRequest(ctx context.Context, senderId, recipientId int64) (*dto.FriendRequestView, error) {
	if f.sendRequestFn == nil {
		return &dto.FriendRequestView{}, nil
	}
	return f.sendRequestFn(ctx, senderId, recipientId)
}

func (f *fakeFriendService) AcceptRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error) {
	if f.acceptRequestFn == nil {
		return &dto.FriendRequestView{}, nil
	}
	return f.acceptRequestFn(ctx, userId, requestId)
}

func (f *fakeFriendService) DeclineRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error) {
	if f.declineRequestFn == nil {
		return &dto.FriendRequestView{}, nil
	}
	return f.declineRequestFn(ctx, userId, requestId)
}

func (f *fakeFriendService) RemoveFriend(ctx context.Context, userId, friendId int64) (*dto.RemoveFriendResponse, error) {
	if f.removeFriendFn == nil {
		return &dto.RemoveFriendResponse{}, nil
	}
	return f.removeFriendFn(ctx, userId, friendId)
}

func (f *fakeFriendService) ListFriends(ctx context.Context, userId int64) (*dto.FriendListResponse, error) {
	if f.listFriendsFn == nil {
		return &dto.FriendListResponse{}, nil
	}
	return f.listFriendsFn(ctx, userId)
}

func (f *fakeFriendService) ListRequests(ctx context.Context, userId int64, incoming bool) (*dto.FriendRequestListResponse, error) {
	if f.listRequestsFn == nil {
		return &dto.FriendRequestListResponse{}, nil
	}
	return f.listRequestsFn(ctx, userId, incoming)
}

type fakePostService struct {
	createPostFn   func(context.Context, int64, *dto.CreatePostRequest) (*dto.PostView, error)
	getFeedFn      func(context.Context, int) (*dto.FeedResponse, error)
	listByAuthorFn func(context.Context, int64, int, int) (*dto.PostListResponse, error)
	deletePostFn   func(context.Context, int64, int64) error
	uploadMediaFn  func(context.Context, io.Reader, int64, string, string) (*dto.UploadResponse, error)
}

var _ service.IPostService = (*fakePostService)(nil)

func (f *fakePostService) CreatePost(ctx context.Context, authorId int64, req *dto.CreatePostRequest) (*dto.PostView, error) {
	if f.createPostFn == nil {
		return &dto.PostView{}, nil
	}
	return f.createPostFn(ctx, authorId, req)
}

func (f *fakePostService) GetFeed(ctx context.Context, limit int) (*dto.FeedResponse, error) {
	if f.getFeedFn == nil {
		return &dto.FeedResponse{}, nil
	}
	return f.getFeedFn(ctx, limit)
}

func (f *fakePostService) ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) (*dto.PostListResponse, error) {
	if f.listByAuthorFn == nil {
		return &dto.PostListResponse{}, nil
	}
	return f.listByAuthorFn(ctx, authorId, page, pageSize)
}

func (f *fakePostService) DeletePost(ctx context.Context, authorId, postId int64) error {
	if f.deletePostFn == nil {
		return nil
	}
	return f.deletePostFn(ctx, authorId, postId)
}

func (f *fakePostService) UploadMedia(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (*dto.UploadResponse, error) {
	if f.uploadMediaFn == nil {
		return &dto.UploadResponse{}, nil
	}
	return f.uploadMediaFn(ctx, reader, size, fileName, contentType)
}

// ==================== 测试脚手架 ====================

type resultBody struct {
	Code int32           `json:"code"`
	Data json.RawMessage `json:"data"`
}

var routerLoggerOnce sync.Once

func initRouterTestLogger() {
	routerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func testRouterTokens() *utils.TokenManager {
	cfg := config.DefaultAuthConfig()
	cfg.JWTSecret = "router-test-secret"
	return utils.NewTokenManager(cfg)
}

type routerFixture struct {
	engine *gin.Engine
	tokens *utils.TokenManager
}

func buildTestRouter(authSvc service.IAuthService, userSvc service.IUserService, friendSvc service.IFriendService, postSvc service.IPostService) *routerFixture {
	initRouterTestLogger()
	if authSvc == nil {
		authSvc = &fakeAuthService{}
	}
	if userSvc == nil {
		userSvc = &fakeUserService{}
	}
	if friendSvc == nil {
		friendSvc = &fakeFriendService{}
	}
	if postSvc == nil {
		postSvc = &fakePostService{}
	}

	tokens := testRouterTokens()
	engine := InitRouter(
		tokens,
		v1.NewAuthHandler(authSvc),
		v1.NewUserHandler(userSvc),
		v1.NewFriendHandler(friendSvc),
		v1.NewPostHandler(postSvc),
	)
	return &routerFixture{engine: engine, tokens: tokens}
}

func (f *routerFixture) authToken(t *testing.T, userId int64) string {
	t.Helper()
	token, err := f.tokens.Sign(userId, "test-device")
	require.NoError(t, err)
	return token
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) resultBody {
	t.Helper()
	var body resultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ==================== 用例 ====================

func TestRouterHealth(t *testing.T) {
	f := buildTestRouter(nil, nil, nil, nil)
	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterAnonymous(t *testing.T) {
	var gotDevice string
	f := buildTestRouter(&fakeAuthService{
		ensureAnonymousFn: func(_ context.Context, deviceId string) (*dto.AuthResponse, error) {
			gotDevice = deviceId
			return &dto.AuthResponse{Token: "tk", User: &dto.UserProfile{Id: 1, IsAnonymous: true}}, nil
		},
	}, nil, nil, nil)

	w := f.do(jsonRequest(t, http.MethodPost, "/api/v1/public/auth/anonymous", `{"deviceId":"dev-1"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeResult(t, w).Code)
	assert.Equal(t, "dev-1", gotDevice)
}

func TestRouterAnonymousMissingDevice(t *testing.T) {
	f := buildTestRouter(nil, nil, nil, nil)

	w := f.do(jsonRequest(t, http.MethodPost, "/api/v1/public/auth/anonymous", `{}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeParamError), decodeResult(t, w).Code)
}

// 冲突响应要带字段标签，客户端靠它提示"哪个标识撞了"
func TestRouterRegisterConflictCarriesField(t *testing.T) {
	f := buildTestRouter(&fakeAuthService{
		registerFn: func(_ context.Context, _ *dto.RegisterRequest) (*dto.AuthResponse, error) {
			return nil, service.NewConflictError(consts.FieldPhone)
		},
	}, nil, nil, nil)

	w := f.do(jsonRequest(t, http.MethodPost, "/api/v1/public/auth/register",
		`{"fullName":"A","email":"a@example.com","phone":"5551234567","password":"password123"}`))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeResult(t, w)
	assert.Equal(t, int32(consts.CodePhoneTaken), body.Code)

	var data struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, consts.FieldPhone, data.Field)
}

func TestRouterProfileRequiresAuth(t *testing.T) {
	f := buildTestRouter(nil, nil, nil, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterProfileWithToken(t *testing.T) {
	var gotUserId int64
	f := buildTestRouter(nil, &fakeUserService{
		getProfileFn: func(_ context.Context, userId int64) (*dto.UserProfile, error) {
			gotUserId = userId
			return &dto.UserProfile{Id: userId}, nil
		},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+f.authToken(t, 42))
	w := f.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeResult(t, w).Code)
	assert.Equal(t, int64(42), gotUserId)
}

// 公开搜索：token 可选，带上则作为视角
func TestRouterSearchIdentityResolution(t *testing.T) {
	var gotActing int64
	f := buildTestRouter(nil, &fakeUserService{
		searchUsersFn: func(_ context.Context, actingUserId int64, req *dto.SearchUsersRequest) (*dto.SearchUsersResponse, error) {
			gotActing = actingUserId
			return &dto.SearchUsersResponse{}, nil
		},
	}, nil, nil)

	t.Run("无身份", func(t *testing.T) {
		gotActing = -1
		w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/public/user/search?q=alice", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), gotActing)
	})

	t.Run("带Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/user/search?q=alice", nil)
		req.Header.Set("Authorization", "Bearer "+f.authToken(t, 7))
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), gotActing)
	})

	t.Run("带X-User-ID头", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/user/search?q=alice", nil)
		req.Header.Set("X-User-ID", "9")
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(9), gotActing)
	})

	t.Run("带userId查询参数", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/public/user/search?q=alice&userId=11", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(11), gotActing)
	})

	t.Run("Token优先于头", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/user/search?q=alice", nil)
		req.Header.Set("Authorization", "Bearer "+f.authToken(t, 7))
		req.Header.Set("X-User-ID", "9")
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), gotActing)
	})
}

func TestRouterFriendFlow(t *testing.T) {
	var sendSender, sendRecipient, acceptUser, acceptRequest int64
	f := buildTestRouter(nil, nil, &fakeFriendService{
		sendRequestFn: func(_ context.Context, senderId, recipientId int64) (*dto.FriendRequestView, error) {
			sendSender, sendRecipient = senderId, recipientId
			return &dto.FriendRequestView{Id: 5, SenderId: senderId, RecipientId: recipientId, Status: "pending"}, nil
		},
		acceptRequestFn: func(_ context.Context, userId, requestId int64) (*dto.FriendRequestView, error) {
			acceptUser, acceptRequest = userId, requestId
			return &dto.FriendRequestView{Id: requestId, Status: "accepted"}, nil
		},
	}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/friend/requests", `{"recipientId":2}`)
	req.Header.Set("Authorization", "Bearer "+f.authToken(t, 1))
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeResult(t, w).Code)
	assert.Equal(t, int64(1), sendSender)
	assert.Equal(t, int64(2), sendRecipient)

	req = jsonRequest(t, http.MethodPost, "/api/v1/friend/requests/5/accept", "")
	req.Header.Set("Authorization", "Bearer "+f.authToken(t, 2))
	w = f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), acceptUser)
	assert.Equal(t, int64(5), acceptRequest)
}

func TestRouterFriendBizErrorCode(t *testing.T) {
	f := buildTestRouter(nil, nil, &fakeFriendService{
		sendRequestFn: func(_ context.Context, _, _ int64) (*dto.FriendRequestView, error) {
			return nil, service.NewBizError(consts.CodeIncomingExists)
		},
	}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/friend/requests", `{"recipientId":2}`)
	req.Header.Set("Authorization", "Bearer "+f.authToken(t, 1))
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeIncomingExists), decodeResult(t, w).Code)
}

func TestRouterPublicFeed(t *testing.T) {
	var gotLimit int
	f := buildTestRouter(nil, nil, nil, &fakePostService{
		getFeedFn: func(_ context.Context, limit int) (*dto.FeedResponse, error) {
			gotLimit = limit
			return &dto.FeedResponse{}, nil
		},
	})

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/public/post/feed?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)
}

// 发布投稿不要求登录：未带任何身份时按匿名入库，其余投稿接口仍要求认证
func TestRouterCreatePostAnonymous(t *testing.T) {
	var gotAuthor int64
	f := buildTestRouter(nil, nil, nil, &fakePostService{
		createPostFn: func(_ context.Context, authorId int64, req *dto.CreatePostRequest) (*dto.PostView, error) {
			gotAuthor = authorId
			return &dto.PostView{Id: 900, AuthorId: authorId, VideoUrl: req.VideoUrl}, nil
		},
	})

	t.Run("无身份发布", func(t *testing.T) {
		gotAuthor = -1
		w := f.do(jsonRequest(t, http.MethodPost, "/api/v1/post", `{"videoUrl":"https://cdn.example.com/v/9.mp4"}`))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeSuccess), decodeResult(t, w).Code)
		assert.Equal(t, int64(0), gotAuthor)
	})

	t.Run("带Token发布", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/v1/post", `{"videoUrl":"https://cdn.example.com/v/9.mp4"}`)
		req.Header.Set("Authorization", "Bearer "+f.authToken(t, 6))
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(6), gotAuthor)
	})

	t.Run("删除和我的投稿仍要求认证", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/post/900", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/post/mine", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouterDeletePostPathParam(t *testing.T) {
	var gotAuthor, gotPost int64
	f := buildTestRouter(nil, nil, nil, &fakePostService{
		deletePostFn: func(_ context.Context, authorId, postId int64) error {
			gotAuthor, gotPost = authorId, postId
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/post/123", nil)
	req.Header.Set("Authorization", "Bearer "+f.authToken(t, 8))
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(8), gotAuthor)
	assert.Equal(t, int64(123), gotPost)
}
