package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"voicechat_backend/internal/feature/users/domain/entity"
)

const (
	// bcryptCost はパスワードハッシュのコストファクターを定義します。
	bcryptCost = 10
)

// CreateUserParams はユーザー作成の入力を保持します。
// Avatarはオプションで、nilの場合はNULLとして保存されます。
type CreateUserParams struct {
	Username string
	Email    string
	Password string
	Avatar   []byte
}

// UpdateUserParams はユーザー更新の入力を保持します。
// Username/Email/Avatar/Statusは常に書き込まれます。
// Password/IsMuted/IsHeadphonesOnはnilでない場合のみ適用されるため、
// 「未指定」と「falseに設定」を区別できます。
type UpdateUserParams struct {
	Username       string
	Email          string
	Password       *string
	Avatar         []byte
	Status         string
	IsMuted        *bool
	IsHeadphonesOn *bool
}

// userUsecase はユーザーアカウントのビジネスロジックを実装します。
type userUsecase struct {
	users UserRepository
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserUsecase(users UserRepository) *userUsecase {
	return &userUsecase{users: users}
}

// fail は基盤エラーの詳細をログに記録し、操作ごとの汎用エラーを返します。
// ストアやハッシュ処理のエラー内容は呼び出し側には公開されません。
func fail(op string, opErr, cause error, attrs ...any) error {
	args := append([]any{"error", cause}, attrs...)
	slog.Error(op, args...)
	return opErr
}

// hashPassword は平文パスワードを固定コストファクターでハッシュ化します。
func hashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CreateUser はハッシュ化されたパスワードで新規ユーザーを作成し、
// 作成されたレコードを返します。
// ユーザー名またはメールアドレスが既に使用されている場合、ErrUserAlreadyExistsを返します。
func (u *userUsecase) CreateUser(ctx context.Context, p CreateUserParams) (*entity.User, error) {
	hashed, err := hashPassword(p.Password)
	if err != nil {
		return nil, fail("create user: password hashing failed", ErrCreateUser, err)
	}

	user := &entity.User{
		Username: p.Username,
		Email:    p.Email,
		Password: hashed,
		Avatar:   p.Avatar,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fail("create user: store error", ErrCreateUser, err, "username", p.Username)
	}
	return user, nil
}

// GetAllUsers は全ユーザーを一覧用のカラム射影で取得します。
// ユーザーが存在しない場合は空のスライスを返します。
func (u *userUsecase) GetAllUsers(ctx context.Context) ([]entity.User, error) {
	users, err := u.users.FindAll(ctx)
	if err != nil {
		return nil, fail("get all users: store error", ErrRetrieveUsers, err)
	}
	return users, nil
}

// GetUserByID はIDでユーザーを取得します。
// ユーザーが存在しない場合は(nil, nil)を返します。未検出はエラーではありません。
func (u *userUsecase) GetUserByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fail("get user by id: store error", ErrRetrieveUser, err, "id", id)
	}
	return user, nil
}

// GetUserByEmail はメールアドレスに完全一致する最初のユーザーを取得します。
// ユーザーが存在しない場合は(nil, nil)を返します。
func (u *userUsecase) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fail("get user by email: store error", ErrRetrieveUser, err, "email", email)
	}
	return user, nil
}

// GetUserByUsername はユーザー名に完全一致する最初のユーザーを取得します。
// ユーザーが存在しない場合は(nil, nil)を返します。
func (u *userUsecase) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fail("get user by username: store error", ErrRetrieveUserByUsername, err, "username", username)
	}
	return user, nil
}

// UpdateUser はユーザーの部分更新を適用し、影響を受けた行数を返します。
// Username/Email/Avatar/Statusは常に書き込まれ、Passwordは指定時のみ
// ハッシュ化して書き込まれます。IsMuted/IsHeadphonesOnは指定時のみ適用されます。
func (u *userUsecase) UpdateUser(ctx context.Context, id uint, p UpdateUserParams) (int64, error) {
	changes := entity.UserChanges{
		Username:       &p.Username,
		Email:          &p.Email,
		Avatar:         &p.Avatar,
		Status:         &p.Status,
		IsMuted:        p.IsMuted,
		IsHeadphonesOn: p.IsHeadphonesOn,
	}
	if p.Password != nil {
		hashed, err := hashPassword(*p.Password)
		if err != nil {
			return 0, fail("update user: password hashing failed", ErrUpdateUser, err, "id", id)
		}
		changes.Password = &hashed
	}

	affected, err := u.users.Update(ctx, id, changes)
	if err != nil {
		return 0, fail("update user: store error", ErrUpdateUser, err, "id", id)
	}
	return affected, nil
}

// UpdateAvatar はアバターとupdated_atのみを更新します。
// avatarがnilの場合、カラムはNULLにクリアされます。
func (u *userUsecase) UpdateAvatar(ctx context.Context, id uint, avatar []byte) error {
	if _, err := u.users.Update(ctx, id, entity.UserChanges{Avatar: &avatar}); err != nil {
		return fail("update avatar: store error", ErrUpdateAvatar, err, "id", id)
	}
	return nil
}

// ChangePassword は現在のパスワードを検証した上で新しいパスワードを保存します。
// ユーザーが存在しない場合はErrUserNotFound、現在のパスワードが一致しない場合は
// ErrCurrentPasswordIncorrectを返します。保存済みハッシュは変更されません。
func (u *userUsecase) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fail("change password: store error", ErrChangePassword, err, "id", id)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ErrCurrentPasswordIncorrect
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return fail("change password: password hashing failed", ErrChangePassword, err, "id", id)
	}
	if _, err := u.users.Update(ctx, id, entity.UserChanges{Password: &hashed}); err != nil {
		return fail("change password: store error", ErrChangePassword, err, "id", id)
	}
	return nil
}

// RegisterFaceRecognition はユーザーの顔ディスクリプタを登録します。
// 数値ベクトルはJSONテキストにシリアライズされ、それ以外のペイロードは
// そのまま保存されます。ユーザーが存在しない場合はErrUserNotFoundを返します。
func (u *userUsecase) RegisterFaceRecognition(ctx context.Context, id uint, descriptor entity.FaceDescriptor) error {
	if _, err := u.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fail("register face recognition: store error", ErrRegisterFace, err, "id", id)
	}

	serialized := descriptor.Raw
	if descriptor.Vector != nil {
		data, err := json.Marshal(descriptor.Vector)
		if err != nil {
			return fail("register face recognition: descriptor serialization failed", ErrRegisterFace, err, "id", id)
		}
		serialized = string(data)
	}

	if _, err := u.users.Update(ctx, id, entity.UserChanges{FaceDescriptor: &serialized}); err != nil {
		return fail("register face recognition: store error", ErrRegisterFace, err, "id", id)
	}
	return nil
}

// DeleteUser はユーザーを削除し、削除前のスナップショットを返します。
// ユーザーが存在しない場合はErrUserNotFoundを返します。
func (u *userUsecase) DeleteUser(ctx context.Context, id uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fail("delete user: store error", ErrDeleteUser, err, "id", id)
	}

	if err := u.users.Delete(ctx, user); err != nil {
		return nil, fail("delete user: store error", ErrDeleteUser, err, "id", id)
	}
	return user, nil
}
