package service

import (
	"context"
	"strings"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/consts"
	"ClipServer/pkg/logger"
)

// userServiceImpl 用户服务实现
type userServiceImpl struct {
	userRepo   repository.IUserRepository
	friendRepo repository.IFriendRepository
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo repository.IUserRepository, friendRepo repository.IFriendRepository) IUserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		friendRepo: friendRepo,
	}
}

// GetProfile 获取本人资料
func (s *userServiceImpl) GetProfile(ctx context.Context, userId int64) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		logger.Error(ctx, "查询用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if user == nil {
		return nil, NewBizError(consts.CodeUserNotFound)
	}
	return dto.ConvertUserProfile(user), nil
}

// UpdateProfile 三态语义更新资料。
// 每个字段独立判定：缺失不动、空串清空、非空值先规范化再写。
// 字段间的差异：
//   - handle 非法时跳过该字段，不拒绝整单（客户端边输边存的场景）
//   - email/phone 非法时拒绝整单（身份字段半成功会造成不可登录的账号）
//   - language 不在支持列表时保持原值
//   - 头像拒绝设备本地路径，入库的引用必须所有端都能解析
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userId int64, req *dto.UpdateProfileRequest) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		logger.Error(ctx, "查询用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if user == nil {
		return nil, NewBizError(consts.CodeUserNotFound)
	}

	updates := make(map[string]interface{})

	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Website != nil {
		updates["website"] = strings.TrimSpace(*req.Website)
	}

	if req.AvatarUri != nil {
		uri := strings.TrimSpace(*req.AvatarUri)
		if uri == "" {
			updates["avatar_uri"] = ""
		} else {
			if !isResolvableAvatarUri(uri) {
				return nil, NewBizError(consts.CodeInvalidAvatarUri)
			}
			updates["avatar_uri"] = uri
		}
	}

	if req.Language != nil {
		if code, ok := utils.NormalizeLanguage(*req.Language); ok {
			updates["language"] = code
		}
		// 不支持的语言码保持原值
	}

	if req.Handle != nil {
		raw := strings.TrimSpace(*req.Handle)
		if raw == "" {
			updates["handle"] = nil
		} else if handle, err := utils.NormalizeHandle(raw); err == nil {
			taken, err := s.userRepo.IsFieldTaken(ctx, consts.FieldHandle, handle, userId)
			if err != nil {
				return nil, NewBizError(consts.CodeInternalError)
			}
			if taken {
				return nil, NewConflictError(consts.FieldHandle)
			}
			updates["handle"] = handle
		}
		// 非法 handle 静默跳过
	}

	if req.Email != nil {
		raw := strings.TrimSpace(*req.Email)
		if raw == "" {
			updates["email"] = nil
		} else {
			email, err := utils.NormalizeEmail(raw)
			if err != nil {
				return nil, NewBizError(consts.CodeInvalidEmail)
			}
			taken, err := s.userRepo.IsFieldTaken(ctx, consts.FieldEmail, email, userId)
			if err != nil {
				return nil, NewBizError(consts.CodeInternalError)
			}
			if taken {
				return nil, NewConflictError(consts.FieldEmail)
			}
			updates["email"] = email
		}
	}

	if req.Phone != nil {
		raw := strings.TrimSpace(*req.Phone)
		if raw == "" {
			updates["phone"] = nil
			updates["is_phone_verified"] = false
		} else {
			phone, err := utils.NormalizeTrPhone(raw)
			if err != nil {
				return nil, NewBizError(consts.CodeInvalidPhone)
			}
			taken, err := s.userRepo.IsFieldTaken(ctx, consts.FieldPhone, phone, userId)
			if err != nil {
				return nil, NewBizError(consts.CodeInternalError)
			}
			if taken {
				return nil, NewConflictError(consts.FieldPhone)
			}
			if user.Phone == nil || *user.Phone != phone {
				updates["phone"] = phone
				// 换号后验证状态作废
				updates["is_phone_verified"] = false
			}
		}
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userId, updates); err != nil {
			return nil, wrapStoreConflict(err)
		}
	}

	updated, err := s.userRepo.GetById(ctx, userId)
	if err != nil || updated == nil {
		logger.Error(ctx, "更新后回读用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	return dto.ConvertUserProfile(updated), nil
}

// isResolvableAvatarUri 头像引用必须是公网 URL 或托管上传前缀下的路径。
// 设备本地路径（file://、content://、相册绝对路径）只有上传设备自己
// 能解析，不允许入库。
func isResolvableAvatarUri(uri string) bool {
	lower := strings.ToLower(uri)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	if strings.HasPrefix(uri, "/uploads/") {
		return true
	}
	return false
}

// SearchUsers 搜索用户并按当前用户视角分类关系。
// actingUserId=0 时没有视角，所有结果标记 unknown。
func (s *userServiceImpl) SearchUsers(ctx context.Context, actingUserId int64, req *dto.SearchUsersRequest) (*dto.SearchUsersResponse, error) {
	users, err := s.userRepo.Search(ctx, req.Query, actingUserId, req.Limit)
	if err != nil {
		logger.Error(ctx, "搜索用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	var friends, incoming, outgoing map[int64]struct{}
	if actingUserId > 0 {
		friends, incoming, outgoing, err = s.friendRepo.RelationSets(ctx, actingUserId)
		if err != nil {
			logger.Error(ctx, "查询关系集合失败", logger.ErrorField(err))
			return nil, NewBizError(consts.CodeInternalError)
		}
	}

	results := make([]*dto.UserSummary, 0, len(users))
	for _, user := range users {
		summary := dto.ConvertUserSummary(user)
		summary.Relationship = classifyRelation(actingUserId, user.Id, friends, incoming, outgoing)
		results = append(results, summary)
	}

	return &dto.SearchUsersResponse{Users: results}, nil
}

// classifyRelation 按集合归属判定关系，好友优先于待处理申请
func classifyRelation(actingUserId, otherId int64, friends, incoming, outgoing map[int64]struct{}) string {
	if actingUserId <= 0 {
		return dto.RelationUnknown
	}
	if _, ok := friends[otherId]; ok {
		return dto.RelationFriend
	}
	if _, ok := incoming[otherId]; ok {
		return dto.RelationIncoming
	}
	if _, ok := outgoing[otherId]; ok {
		return dto.RelationOutgoing
	}
	return dto.RelationNone
}
