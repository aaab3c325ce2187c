package service

import (
	"context"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/consts"
	"ClipServer/model"
	"ClipServer/pkg/logger"
)

// friendServiceImpl 好友服务实现
type friendServiceImpl struct {
	friendRepo repository.IFriendRepository
	userRepo   repository.IUserRepository
}

// NewFriendService 创建好友服务实例
func NewFriendService(friendRepo repository.IFriendRepository, userRepo repository.IUserRepository) IFriendService {
	return &friendServiceImpl{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendRequest 发送好友申请。
// 判定顺序：
//  1. 不能加自己；接收方必须存在
//  2. 规范对已是好友 -> 直接报"已是好友"，不产生新申请
//  3. 自己已有同方向 pending -> 幂等返回已有申请
//  4. 对方已向我发过 pending（镜像方向） -> 报"对方已申请"，
//     正确的客户端动作是去接受那条，而不是再建一条反向重复
//  5. 以上都不是才真正创建
func (s *friendServiceImpl) SendRequest(ctx context.Context, senderId, recipientId int64) (*dto.FriendRequestView, error) {
	if senderId == recipientId {
		return nil, NewBizError(consts.CodeCannotAddSelf)
	}

	recipient, err := s.userRepo.GetById(ctx, recipientId)
	if err != nil {
		logger.Error(ctx, "查询接收方失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if recipient == nil {
		return nil, NewBizError(consts.CodeUserNotFound)
	}

	friendship, err := s.friendRepo.GetFriendship(ctx, senderId, recipientId)
	if err != nil {
		logger.Error(ctx, "查询好友关系失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if friendship != nil {
		return nil, NewBizError(consts.CodeAlreadyFriend)
	}

	if existing, err := s.friendRepo.GetPendingRequest(ctx, senderId, recipientId); err != nil {
		return nil, NewBizError(consts.CodeInternalError)
	} else if existing != nil {
		// 重复发送幂等返回已有申请
		return dto.ConvertFriendRequestView(existing, recipient), nil
	}

	if mirror, err := s.friendRepo.GetPendingRequest(ctx, recipientId, senderId); err != nil {
		return nil, NewBizError(consts.CodeInternalError)
	} else if mirror != nil {
		return nil, NewBizError(consts.CodeIncomingExists)
	}

	req, err := s.friendRepo.CreateRequest(ctx, &model.FriendRequest{
		SenderId:    senderId,
		RecipientId: recipientId,
		Status:      model.RequestStatusPending,
	})
	if err != nil {
		logger.Error(ctx, "创建好友申请失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	logger.Info(ctx, "好友申请已创建",
		logger.Int64("request_id", req.Id),
		logger.Int64("sender_id", senderId),
		logger.Int64("recipient_id", recipientId),
	)
	return dto.ConvertFriendRequestView(req, recipient), nil
}

// loadOwnedRequest 取申请并校验 userId 是接收方
func (s *friendServiceImpl) loadOwnedRequest(ctx context.Context, userId, requestId int64) (*model.FriendRequest, error) {
	req, err := s.friendRepo.GetRequestById(ctx, requestId)
	if err != nil {
		logger.Error(ctx, "查询好友申请失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if req == nil {
		return nil, NewBizError(consts.CodeRequestNotFound)
	}
	if req.RecipientId != userId {
		return nil, NewBizError(consts.CodeNotRequestTarget)
	}
	return req, nil
}

// AcceptRequest 接受申请。状态流转和好友关系落库在仓储层同一事务里；
// 非 pending 的申请重复接受是无害空操作，返回它当前的状态。
func (s *friendServiceImpl) AcceptRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error) {
	req, err := s.loadOwnedRequest(ctx, userId, requestId)
	if err != nil {
		return nil, err
	}

	alreadyProcessed, err := s.friendRepo.AcceptRequest(ctx, req)
	if err != nil {
		logger.Error(ctx, "接受好友申请失败",
			logger.Int64("request_id", requestId),
			logger.ErrorField(err),
		)
		return nil, NewBizError(consts.CodeInternalError)
	}

	if !alreadyProcessed {
		req.Status = model.RequestStatusAccepted
		logger.Info(ctx, "好友申请已接受",
			logger.Int64("request_id", requestId),
			logger.Int64("sender_id", req.SenderId),
			logger.Int64("recipient_id", req.RecipientId),
		)
	}

	sender, err := s.userRepo.GetById(ctx, req.SenderId)
	if err != nil {
		sender = nil // 对端信息缺失不影响结果
	}
	return dto.ConvertFriendRequestView(req, sender), nil
}

// DeclineRequest 拒绝申请，重复调用返回当前终态
func (s *friendServiceImpl) DeclineRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error) {
	req, err := s.loadOwnedRequest(ctx, userId, requestId)
	if err != nil {
		return nil, err
	}

	alreadyProcessed, err := s.friendRepo.DeclineRequest(ctx, requestId)
	if err != nil {
		logger.Error(ctx, "拒绝好友申请失败",
			logger.Int64("request_id", requestId),
			logger.ErrorField(err),
		)
		return nil, NewBizError(consts.CodeInternalError)
	}

	if !alreadyProcessed {
		req.Status = model.RequestStatusDeclined
	}

	sender, err := s.userRepo.GetById(ctx, req.SenderId)
	if err != nil {
		sender = nil
	}
	return dto.ConvertFriendRequestView(req, sender), nil
}

// RemoveFriend 删除好友，关系不存在时也返回成功（无害空操作）
func (s *friendServiceImpl) RemoveFriend(ctx context.Context, userId, friendId int64) (*dto.RemoveFriendResponse, error) {
	removed, err := s.friendRepo.RemoveFriendship(ctx, userId, friendId)
	if err != nil {
		logger.Error(ctx, "删除好友关系失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if removed {
		logger.Info(ctx, "好友关系已解除",
			logger.Int64("user_id", userId),
			logger.Int64("friend_id", friendId),
		)
	}
	return &dto.RemoveFriendResponse{Removed: removed}, nil
}

// ListFriends 好友列表
func (s *friendServiceImpl) ListFriends(ctx context.Context, userId int64) (*dto.FriendListResponse, error) {
	friendIds, err := s.friendRepo.ListFriendIds(ctx, userId)
	if err != nil {
		logger.Error(ctx, "查询好友列表失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	friends := make([]*dto.UserSummary, 0, len(friendIds))
	for _, id := range friendIds {
		user, err := s.userRepo.GetById(ctx, id)
		if err != nil || user == nil {
			continue
		}
		friends = append(friends, dto.ConvertUserSummary(user))
	}

	return &dto.FriendListResponse{Friends: friends}, nil
}

// ListRequests 待处理申请列表。入向列表读取并清零未读计数。
func (s *friendServiceImpl) ListRequests(ctx context.Context, userId int64, incoming bool) (*dto.FriendRequestListResponse, error) {
	requests, err := s.friendRepo.ListRequests(ctx, userId, incoming, model.RequestStatusPending)
	if err != nil {
		logger.Error(ctx, "查询申请列表失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	views := make([]*dto.FriendRequestView, 0, len(requests))
	for _, req := range requests {
		peerId := req.SenderId
		if !incoming {
			peerId = req.RecipientId
		}
		peer, err := s.userRepo.GetById(ctx, peerId)
		if err != nil {
			peer = nil
		}
		views = append(views, dto.ConvertFriendRequestView(req, peer))
	}

	resp := &dto.FriendRequestListResponse{Requests: views}
	if incoming {
		unread, _ := s.friendRepo.GetRequestUnread(ctx, userId)
		resp.Unread = unread
		_ = s.friendRepo.ClearRequestUnread(ctx, userId)
	}
	return resp, nil
}
