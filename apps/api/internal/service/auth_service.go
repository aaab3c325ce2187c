package service

import (
	"context"
	"errors"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/consts"
	"ClipServer/model"
	"ClipServer/pkg/async"
	"ClipServer/pkg/logger"
	"ClipServer/pkg/mailer"
	"ClipServer/pkg/util"

	"golang.org/x/crypto/bcrypt"
)

// authServiceImpl 认证服务实现。
// 账号状态隐含在数据里：password_hash 为 NULL 是匿名账号，
// 非 NULL 是已认领账号，没有独立的状态列。
type authServiceImpl struct {
	userRepo   repository.IUserRepository
	tokens     *utils.TokenManager
	bcryptCost int
}

// NewAuthService 创建认证服务实例
func NewAuthService(userRepo repository.IUserRepository, tokens *utils.TokenManager, bcryptCost int) IAuthService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authServiceImpl{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// EnsureAnonymous 按设备标识取或建匿名账号。
// 业务流程：
//  1. 按 deviceId 查找，命中直接复用（重复调用不改动用户）
//  2. 未命中则创建匿名账号；并发下撞 device 唯一键时回读取胜者
//  3. 无论新老用户，总是签发新 Token
func (s *authServiceImpl) EnsureAnonymous(ctx context.Context, deviceId string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByDeviceId(ctx, deviceId)
	if err != nil {
		logger.Error(ctx, "按设备查询用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	if user == nil {
		user, err = s.userRepo.Create(ctx, &model.User{DeviceId: deviceId})
		if err != nil {
			// 两个请求同时开户：约束拦下后一个，回读前一个的结果即可
			var conflict *repository.ConflictError
			if errors.As(err, &conflict) && conflict.Field == consts.FieldDevice {
				user, err = s.userRepo.GetByDeviceId(ctx, deviceId)
				if err != nil || user == nil {
					logger.Error(ctx, "设备冲突后回读失败", logger.ErrorField(err))
					return nil, NewBizError(consts.CodeInternalError)
				}
			} else {
				logger.Error(ctx, "创建匿名账号失败",
					logger.String("device_id", utils.MaskDeviceId(deviceId)),
					logger.ErrorField(err),
				)
				return nil, NewBizError(consts.CodeInternalError)
			}
		} else {
			logger.Info(ctx, "匿名账号已创建",
				logger.Int64("user_id", user.Id),
				logger.String("device_id", utils.MaskDeviceId(deviceId)),
			)
		}
	}

	return s.issue(ctx, user)
}

// Register 注册。
// 业务流程：
//  1. 规范化邮箱和手机号，失败整单拒绝
//  2. 确定转正目标：deviceId 命中匿名账号则原地转正（保留 id）；
//     命中已认领账号则拒绝转正、另开新户（绝不覆盖已认领账号）
//  3. 邮箱/手机号占用预检查（排除转正目标自己的行）
//  4. 写库；写入时撞唯一键（预检查后的竞态）翻译成同样的字段级冲突
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		return nil, NewBizError(consts.CodeInvalidEmail)
	}
	phone, err := utils.NormalizeTrPhone(req.Phone)
	if err != nil {
		return nil, NewBizError(consts.CodeInvalidPhone)
	}

	// 确定转正目标
	var convertTarget *model.User
	deviceId := req.DeviceId
	if deviceId != "" {
		existing, err := s.userRepo.GetByDeviceId(ctx, deviceId)
		if err != nil {
			logger.Error(ctx, "按设备查询用户失败", logger.ErrorField(err))
			return nil, NewBizError(consts.CodeInternalError)
		}
		if existing != nil {
			if existing.IsClaimed() {
				// 设备上已有认领账号：不动它，新账号用合成设备标识
				logger.Warn(ctx, "设备已绑定认领账号，拒绝转正另开新户",
					logger.Int64("claimed_user_id", existing.Id),
					logger.String("device_id", utils.MaskDeviceId(deviceId)),
				)
				deviceId = util.SyntheticDeviceId()
			} else {
				convertTarget = existing
			}
		}
	} else {
		deviceId = util.SyntheticDeviceId()
	}

	// 占用预检查：给常见情况一个明确错误，权威判定仍是唯一约束
	var excludeId int64
	if convertTarget != nil {
		excludeId = convertTarget.Id
	}
	if taken, err := s.userRepo.IsFieldTaken(ctx, consts.FieldEmail, email, excludeId); err != nil {
		return nil, NewBizError(consts.CodeInternalError)
	} else if taken {
		return nil, NewConflictError(consts.FieldEmail)
	}
	if taken, err := s.userRepo.IsFieldTaken(ctx, consts.FieldPhone, phone, excludeId); err != nil {
		return nil, NewBizError(consts.CodeInternalError)
	} else if taken {
		return nil, NewConflictError(consts.FieldPhone)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		logger.Error(ctx, "生成密码哈希失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	passwordHash := string(hashed)

	var user *model.User
	if convertTarget != nil {
		// 原地转正：保留 id、设备和历史资料，写入身份字段和密码
		updates := map[string]interface{}{
			"full_name":     req.FullName,
			"email":         email,
			"phone":         phone,
			"password_hash": passwordHash,
		}
		if err := s.userRepo.Update(ctx, convertTarget.Id, updates); err != nil {
			return nil, wrapStoreConflict(err)
		}
		user, err = s.userRepo.GetById(ctx, convertTarget.Id)
		if err != nil || user == nil {
			logger.Error(ctx, "转正后回读用户失败", logger.ErrorField(err))
			return nil, NewBizError(consts.CodeInternalError)
		}
		logger.Info(ctx, "匿名账号转正完成",
			logger.Int64("user_id", user.Id),
			logger.String("email", utils.MaskEmail(email)),
		)
	} else {
		user, err = s.userRepo.Create(ctx, &model.User{
			DeviceId:     deviceId,
			FullName:     req.FullName,
			Email:        &email,
			Phone:        &phone,
			PasswordHash: &passwordHash,
		})
		if err != nil {
			return nil, wrapStoreConflict(err)
		}
		logger.Info(ctx, "新账号注册完成",
			logger.Int64("user_id", user.Id),
			logger.String("email", utils.MaskEmail(email)),
		)
	}

	// 欢迎邮件尽力而为，不阻塞注册
	welcomeTo := email
	welcomeName := req.FullName
	async.RunSafe(ctx, func(runCtx context.Context) {
		mailer.M().SendWelcome(runCtx, welcomeTo, welcomeName)
	}, 0)

	return s.issue(ctx, user)
}

// Login 按任意标识登录。
// 标识的解释是择一的：第一个规范化成功的决定查找策略，不做组合。
// 邮箱 -> 精确匹配；手机号 -> 历史变体 OR 匹配；用户名 -> 精确匹配。
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var (
		user *model.User
		err  error
	)
	if email, e := utils.NormalizeEmail(req.Identifier); e == nil {
		user, err = s.userRepo.GetByEmail(ctx, email)
	} else if _, e := utils.NormalizeTrPhone(req.Identifier); e == nil {
		user, err = s.userRepo.GetByPhoneCandidates(ctx, utils.PhoneCandidates(req.Identifier))
	} else if handle, e := utils.NormalizeHandle(req.Identifier); e == nil {
		user, err = s.userRepo.GetByHandle(ctx, handle)
	} else {
		// 三种规范化都失败，不碰存储直接拒绝
		return nil, NewBizError(consts.CodeIdentifierError)
	}

	if err != nil {
		logger.Error(ctx, "登录查询用户失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}
	if user == nil {
		return nil, NewBizError(consts.CodeUserNotFound)
	}

	// 匿名账号没有密码，和"密码错误"是两回事
	if !user.IsClaimed() {
		return nil, NewBizError(consts.CodePasswordNotSet)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBizError(consts.CodePasswordError)
	}

	logger.Info(ctx, "用户登录成功", logger.Int64("user_id", user.Id))
	return s.issue(ctx, user)
}

// issue 签发 Token 并组装认证响应
func (s *authServiceImpl) issue(ctx context.Context, user *model.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Sign(user.Id, user.DeviceId)
	if err != nil {
		logger.Error(ctx, "签发 Token 失败",
			logger.Int64("user_id", user.Id),
			logger.ErrorField(err),
		)
		return nil, NewBizError(consts.CodeInternalError)
	}

	// Token 记录到 Redis 供踢下线/审计用，失败不影响签发
	userId, deviceId := user.Id, user.DeviceId
	async.RunSafe(ctx, func(runCtx context.Context) {
		_ = s.userRepo.StoreAccessToken(runCtx, userId, deviceId, token)
	}, 0)

	return &dto.AuthResponse{
		Token: token,
		User:  dto.ConvertUserProfile(user),
	}, nil
}
