package service

import (
	"context"
	"sync"

	"ClipServer/model"
	"ClipServer/pkg/logger"

	"go.uber.org/zap"
)

var testLoggerOnce sync.Once

func initTestLogger() {
	testLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// ==================== 用户 Repository 假实现 ====================

type fakeUserRepo struct {
	getByIdFn           func(ctx context.Context, id int64) (*model.User, error)
	getByDeviceIdFn     func(ctx context.Context, deviceId string) (*model.User, error)
	getByEmailFn        func(ctx context.Context, email string) (*model.User, error)
	getByHandleFn       func(ctx context.Context, handle string) (*model.User, error)
	getByPhoneCandsFn   func(ctx context.Context, candidates []string) (*model.User, error)
	createFn            func(ctx context.Context, user *model.User) (*model.User, error)
	updateFn            func(ctx context.Context, userId int64, updates map[string]interface{}) error
	isFieldTakenFn      func(ctx context.Context, field, value string, excludeId int64) (bool, error)
	searchFn            func(ctx context.Context, query string, excludeId int64, limit int) ([]*model.User, error)
	storeTokenFn        func(ctx context.Context, userId int64, deviceId, token string) error
}

func (f *fakeUserRepo) GetById(ctx context.Context, id int64) (*model.User, error) {
	if f.getByIdFn == nil {
		return nil, nil
	}
	return f.getByIdFn(ctx, id)
}

func (f *fakeUserRepo) GetByDeviceId(ctx context.Context, deviceId string) (*model.User, error) {
	if f.getByDeviceIdFn == nil {
		return nil, nil
	}
	return f.getByDeviceIdFn(ctx, deviceId)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.getByEmailFn == nil {
		return nil, nil
	}
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserRepo) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	if f.getByHandleFn == nil {
		return nil, nil
	}
	return f.getByHandleFn(ctx, handle)
}

func (f *fakeUserRepo) GetByPhoneCandidates(ctx context.Context, candidates []string) (*model.User, error) {
	if f.getByPhoneCandsFn == nil {
		return nil, nil
	}
	return f.getByPhoneCandsFn(ctx, candidates)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if f.createFn == nil {
		return user, nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) Update(ctx context.Context, userId int64, updates map[string]interface{}) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, userId, updates)
}

func (f *fakeUserRepo) IsFieldTaken(ctx context.Context, field, value string, excludeId int64) (bool, error) {
	if f.isFieldTakenFn == nil {
		return false, nil
	}
	return f.isFieldTakenFn(ctx, field, value, excludeId)
}

func (f *fakeUserRepo) Search(ctx context.Context, query string, excludeId int64, limit int) ([]*model.User, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, query, excludeId, limit)
}

func (f *fakeUserRepo) StoreAccessToken(ctx context.Context, userId int64, deviceId, token string) error {
	if f.storeTokenFn == nil {
		return nil
	}
	return f.storeTokenFn(ctx, userId, deviceId, token)
}

// ==================== 好友 Repository 假实现 ====================

type fakeFriendRepo struct {
	getRequestByIdFn    func(ctx context.Context, id int64) (*model.FriendRequest, error)
	getPendingRequestFn func(ctx context.Context, senderId, recipientId int64) (*model.FriendRequest, error)
	createRequestFn     func(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error)
	acceptRequestFn     func(ctx context.Context, req *model.FriendRequest) (bool, error)
	declineRequestFn    func(ctx context.Context, requestId int64) (bool, error)
	getFriendshipFn     func(ctx context.Context, userA, userB int64) (*model.Friendship, error)
	removeFriendshipFn  func(ctx context.Context, userA, userB int64) (bool, error)
	listFriendIdsFn     func(ctx context.Context, userId int64) ([]int64, error)
	listRequestsFn      func(ctx context.Context, userId int64, incoming bool, status int8) ([]*model.FriendRequest, error)
	relationSetsFn      func(ctx context.Context, userId int64) (map[int64]struct{}, map[int64]struct{}, map[int64]struct{}, error)
	getRequestUnreadFn  func(ctx context.Context, userId int64) (int64, error)
	clearRequestUnread  func(ctx context.Context, userId int64) error
}

func (f *fakeFriendRepo) GetRequestById(ctx context.Context, id int64) (*model.FriendRequest, error) {
	if f.getRequestByIdFn == nil {
		return nil, nil
	}
	return f.getRequestByIdFn(ctx, id)
}

func (f *fakeFriendRepo) GetPendingRequest(ctx context.Context, senderId, recipientId int64) (*model.FriendRequest, error) {
	if f.getPendingRequestFn == nil {
		return nil, nil
	}
	return f.getPendingRequestFn(ctx, senderId, recipientId)
}

func (f *fakeFriendRepo) CreateRequest(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error) {
	if f.createRequestFn == nil {
		return req, nil
	}
	return f.createRequestFn(ctx, req)
}

func (f *fakeFriendRepo) AcceptRequest(ctx context.Context, req *model.FriendRequest) (bool, error) {
	if f.acceptRequestFn == nil {
		return false, nil
	}
	return f.acceptRequestFn(ctx, req)
}

func (f *fakeFriendRepo) DeclineRequest(ctx context.Context, requestId int64) (bool, error) {
	if f.declineRequestFn == nil {
		return false, nil
	}
	return f.declineRequestFn(ctx, requestId)
}

func (f *fakeFriendRepo) GetFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error) {
	if f.getFriendshipFn == nil {
		return nil, nil
	}
	return f.getFriendshipFn(ctx, userA, userB)
}

func (f *fakeFriendRepo) RemoveFriendship(ctx context.Context, userA, userB int64) (bool, error) {
	if f.removeFriendshipFn == nil {
		return false, nil
	}
	return f.removeFriendshipFn(ctx, userA, userB)
}

func (f *fakeFriendRepo) ListFriendIds(ctx context.Context, userId int64) ([]int64, error) {
	if f.listFriendIdsFn == nil {
		return nil, nil
	}
	return f.listFriendIdsFn(ctx, userId)
}

func (f *fakeFriendRepo) ListRequests(ctx context.Context, userId int64, incoming bool, status int8) ([]*model.FriendRequest, error) {
	if f.listRequestsFn == nil {
		return nil, nil
	}
	return f.listRequestsFn(ctx, userId, incoming, status)
}

func (f *fakeFriendRepo) RelationSets(ctx context.Context, userId int64) (map[int64]struct{}, map[int64]struct{}, map[int64]struct{}, error) {
	if f.relationSetsFn == nil {
		return nil, nil, nil, nil
	}
	return f.relationSetsFn(ctx, userId)
}

func (f *fakeFriendRepo) GetRequestUnread(ctx context.Context, userId int64) (int64, error) {
	if f.getRequestUnreadFn == nil {
		return 0, nil
	}
	return f.getRequestUnreadFn(ctx, userId)
}

func (f *fakeFriendRepo) ClearRequestUnread(ctx context.Context, userId int64) error {
	if f.clearRequestUnread == nil {
		return nil
	}
	return f.clearRequestUnread(ctx, userId)
}

// ==================== 投稿 Repository 假实现 ====================

type fakePostRepo struct {
	createFn       func(ctx context.Context, post *model.Post) (*model.Post, error)
	getByIdFn      func(ctx context.Context, id int64) (*model.Post, error)
	listFeedFn     func(ctx context.Context, limit int) ([]*model.Post, error)
	listByAuthorFn func(ctx context.Context, authorId int64, page, pageSize int) ([]*model.Post, int64, error)
	deleteFn       func(ctx context.Context, id, authorId int64) (bool, error)
}

func (f *fakePostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	if f.createFn == nil {
		return post, nil
	}
	return f.createFn(ctx, post)
}

func (f *fakePostRepo) GetById(ctx context.Context, id int64) (*model.Post, error) {
	if f.getByIdFn == nil {
		return nil, nil
	}
	return f.getByIdFn(ctx, id)
}

func (f *fakePostRepo) ListFeed(ctx context.Context, limit int) ([]*model.Post, error) {
	if f.listFeedFn == nil {
		return nil, nil
	}
	return f.listFeedFn(ctx, limit)
}

func (f *fakePostRepo) ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) ([]*model.Post, int64, error) {
	if f.listByAuthorFn == nil {
		return nil, 0, nil
	}
	return f.listByAuthorFn(ctx, authorId, page, pageSize)
}

func (f *fakePostRepo) Delete(ctx context.Context, id, authorId int64) (bool, error) {
	if f.deleteFn == nil {
		return false, nil
	}
	return f.deleteFn(ctx, id, authorId)
}

// ==================== 共用测试数据 ====================

func strPtr(s string) *string { return &s }

func claimedUser(id int64, email, phone, hash string) *model.User {
	u := &model.User{Id: id, DeviceId: "dev-claimed"}
	if email != "" {
		u.Email = &email
	}
	if phone != "" {
		u.Phone = &phone
	}
	if hash != "" {
		u.PasswordHash = &hash
	}
	return u
}

func anonymousUser(id int64, deviceId string) *model.User {
	return &model.User{Id: id, DeviceId: deviceId}
}
