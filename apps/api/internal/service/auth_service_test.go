package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/config"
	"ClipServer/consts"
	"ClipServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokens() *utils.TokenManager {
	cfg := config.DefaultAuthConfig()
	cfg.JWTSecret = "test-secret"
	return utils.NewTokenManager(cfg)
}

func newTestAuthService(userRepo repository.IUserRepository) IAuthService {
	initTestLogger()
	return NewAuthService(userRepo, testTokens(), bcrypt.MinCost)
}

func requireBizCode(t *testing.T, err error, want int32) {
	t.Helper()
	require.Error(t, err)
	code, _ := CodeOf(err)
	require.Equal(t, want, code)
}

func TestEnsureAnonymousReusesExistingUser(t *testing.T) {
	created := 0
	userRepo := &fakeUserRepo{
		getByDeviceIdFn: func(_ context.Context, deviceId string) (*model.User, error) {
			return anonymousUser(7, deviceId), nil
		},
		createFn: func(_ context.Context, user *model.User) (*model.User, error) {
			created++
			return user, nil
		},
	}
	svc := newTestAuthService(userRepo)

	resp, err := svc.EnsureAnonymous(context.Background(), "device-1")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(7), resp.User.Id)
	assert.True(t, resp.User.IsAnonymous)
	assert.NotEmpty(t, resp.Token)
	assert.Zero(t, created, "已有账号不应再创建")
}

func TestEnsureAnonymousCreatesNewUser(t *testing.T) {
	userRepo := &fakeUserRepo{
		createFn: func(_ context.Context, user *model.User) (*model.User, error) {
			user.Id = 99
			return user, nil
		},
	}
	svc := newTestAuthService(userRepo)

	resp, err := svc.EnsureAnonymous(context.Background(), "device-new")
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.User.Id)
	assert.True(t, resp.User.IsAnonymous)
}

// 并发开户：Create 撞设备唯一键时回读获胜者
func TestEnsureAnonymousDeviceRace(t *testing.T) {
	lookups := 0
	userRepo := &fakeUserRepo{
		getByDeviceIdFn: func(_ context.Context, deviceId string) (*model.User, error) {
			lookups++
			if lookups == 1 {
				return nil, nil
			}
			return anonymousUser(5, deviceId), nil
		},
		createFn: func(_ context.Context, _ *model.User) (*model.User, error) {
			return nil, &repository.ConflictError{Field: consts.FieldDevice}
		},
	}
	svc := newTestAuthService(userRepo)

	resp, err := svc.EnsureAnonymous(context.Background(), "device-race")
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.User.Id)
	assert.Equal(t, 2, lookups)
}

func TestRegisterConvertsAnonymousInPlace(t *testing.T) {
	var updatedId int64
	var updates map[string]interface{}
	userRepo := &fakeUserRepo{
		getByDeviceIdFn: func(_ context.Context, _ string) (*model.User, error) {
			return anonymousUser(11, "device-a"), nil
		},
		updateFn: func(_ context.Context, userId int64, u map[string]interface{}) error {
			updatedId = userId
			updates = u
			return nil
		},
		getByIdFn: func(_ context.Context, id int64) (*model.User, error) {
			return claimedUser(id, "new@example.com", "5551234567", "hash"), nil
		},
	}
	svc := newTestAuthService(userRepo)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ayşe",
		Email:    "New@Example.com",
		Phone:    "05551234567",
		Password: "password123",
		DeviceId: "device-a",
	})
	require.NoError(t, err)

	// 原地转正：保留 id，不新建账号
	assert.Equal(t, int64(11), updatedId)
	assert.Equal(t, int64(11), resp.User.Id)
	assert.False(t, resp.User.IsAnonymous)

	// 标识字段写入的是规范形式
	assert.Equal(t, "new@example.com", updates["email"])
	assert.Equal(t, "5551234567", updates["phone"])
	assert.NotEmpty(t, updates["password_hash"])
}

// 设备上已有认领账号：拒绝转正，另开新户且不碰旧账号
func TestRegisterRefusesClaimedDevice(t *testing.T) {
	updated := false
	var createdDevice string
	userRepo := &fakeUserRepo{
		getByDeviceIdFn: func(_ context.Context, _ string) (*model.User, error) {
			return claimedUser(3, "old@example.com", "", "hash"), nil
		},
		updateFn: func(_ context.Context, _ int64, _ map[string]interface{}) error {
			updated = true
			return nil
		},
		createFn: func(_ context.Context, user *model.User) (*model.User, error) {
			createdDevice = user.DeviceId
			user.Id = 42
			return user, nil
		},
	}
	svc := newTestAuthService(userRepo)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Mehmet",
		Email:    "mehmet@example.com",
		Phone:    "5550000001",
		Password: "password123",
		DeviceId: "device-claimed",
	})
	require.NoError(t, err)
	assert.False(t, updated, "不能覆盖已认领账号")
	assert.Equal(t, int64(42), resp.User.Id)
	assert.NotEqual(t, "device-claimed", createdDevice, "新账号应使用合成设备标识")
	assert.NotEmpty(t, createdDevice)
}

func TestRegisterWithoutDeviceUsesSyntheticId(t *testing.T) {
	var createdDevice string
	userRepo := &fakeUserRepo{
		createFn: func(_ context.Context, user *model.User) (*model.User, error) {
			createdDevice = user.DeviceId
			user.Id = 1
			return user, nil
		},
	}
	svc := newTestAuthService(userRepo)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ali",
		Email:    "ali@example.com",
		Phone:    "5550000002",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, createdDevice)
}

func TestRegisterInvalidIdentifiers(t *testing.T) {
	svc := newTestAuthService(&fakeUserRepo{})

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "broken", Phone: "5551234567", Password: "password123",
	})
	requireBizCode(t, err, consts.CodeInvalidEmail)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "ok@example.com", Phone: "123", Password: "password123",
	})
	requireBizCode(t, err, consts.CodeInvalidPhone)
}

// 预检查按规范形式比对：库里存 5551234567，带 0 前缀注册也要撞
func TestRegisterDetectsPhoneVariantConflict(t *testing.T) {
	var checkedPhone string
	userRepo := &fakeUserRepo{
		isFieldTakenFn: func(_ context.Context, field, value string, _ int64) (bool, error) {
			if field == consts.FieldPhone {
				checkedPhone = value
				return true, nil
			}
			return false, nil
		},
	}
	svc := newTestAuthService(userRepo)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "x@example.com", Phone: "05551234567", Password: "password123",
	})
	requireBizCode(t, err, consts.CodePhoneTaken)
	assert.Equal(t, "5551234567", checkedPhone)

	_, field := CodeOf(err)
	assert.Equal(t, consts.FieldPhone, field)
}

// 预检查之后的竞态：约束冲突翻译成同样的字段级错误
func TestRegisterConstraintRaceMapsToFieldConflict(t *testing.T) {
	userRepo := &fakeUserRepo{
		createFn: func(_ context.Context, _ *model.User) (*model.User, error) {
			return nil, &repository.ConflictError{Field: consts.FieldEmail}
		},
	}
	svc := newTestAuthService(userRepo)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "x@example.com", Phone: "5551234567", Password: "password123",
	})
	requireBizCode(t, err, consts.CodeEmailTaken)
	_, field := CodeOf(err)
	assert.Equal(t, consts.FieldEmail, field)
}

func TestLoginStrategyChain(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := claimedUser(10, "user@example.com", "5551234567", string(hash))

	var emailLookup, phoneLookup, handleLookup bool
	var phoneCands []string
	userRepo := &fakeUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			emailLookup = true
			return stored, nil
		},
		getByPhoneCandsFn: func(_ context.Context, candidates []string) (*model.User, error) {
			phoneLookup = true
			phoneCands = candidates
			return stored, nil
		},
		getByHandleFn: func(_ context.Context, _ string) (*model.User, error) {
			handleLookup = true
			return stored, nil
		},
	}
	svc := newTestAuthService(userRepo)

	t.Run("邮箱标识只走邮箱查找", func(t *testing.T) {
		emailLookup, phoneLookup, handleLookup = false, false, false
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "User@Example.com", Password: "password123"})
		require.NoError(t, err)
		assert.True(t, emailLookup)
		assert.False(t, phoneLookup)
		assert.False(t, handleLookup)
	})

	t.Run("手机号标识展开历史变体", func(t *testing.T) {
		emailLookup, phoneLookup, handleLookup = false, false, false
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "05551234567", Password: "password123"})
		require.NoError(t, err)
		assert.False(t, emailLookup)
		assert.True(t, phoneLookup)
		assert.Contains(t, phoneCands, "5551234567")
		assert.Contains(t, phoneCands, "05551234567")
		assert.Contains(t, phoneCands, "905551234567")
	})

	t.Run("用户名标识剥掉@前缀", func(t *testing.T) {
		emailLookup, phoneLookup, handleLookup = false, false, false
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "@john_doe", Password: "password123"})
		require.NoError(t, err)
		assert.True(t, handleLookup)
	})

	t.Run("三种规范化都失败不碰存储", func(t *testing.T) {
		emailLookup, phoneLookup, handleLookup = false, false, false
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "a!", Password: "password123"})
		requireBizCode(t, err, consts.CodeIdentifierError)
		assert.False(t, emailLookup || phoneLookup || handleLookup)
	})
}

func TestLoginUserNotFound(t *testing.T) {
	svc := newTestAuthService(&fakeUserRepo{})

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "ghost@example.com", Password: "x"})
	requireBizCode(t, err, consts.CodeUserNotFound)
}

// 匿名账号没有密码，与密码错误是两个错误码
func TestLoginPasswordNotSetVsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	anon := anonymousUser(1, "dev")
	anonEmail := "anon@example.com"
	anon.Email = &anonEmail

	claimed := claimedUser(2, "claimed@example.com", "", string(hash))

	userRepo := &fakeUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if strings.HasPrefix(email, "anon@") {
				return anon, nil
			}
			return claimed, nil
		},
	}
	svc := newTestAuthService(userRepo)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Identifier: "anon@example.com", Password: "whatever"})
	requireBizCode(t, err, consts.CodePasswordNotSet)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Identifier: "claimed@example.com", Password: "wrong-password"})
	requireBizCode(t, err, consts.CodePasswordError)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "claimed@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.User.Id)
}

func TestLoginRepositoryErrorIsInternal(t *testing.T) {
	userRepo := &fakeUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestAuthService(userRepo)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "x@example.com", Password: "x"})
	requireBizCode(t, err, consts.CodeInternalError)
}
