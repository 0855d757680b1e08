// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"voicechat_backend/internal/feature/users/domain/entity"
	"voicechat_backend/internal/feature/users/usecase"
)

// listColumns は一覧取得時に射影されるカラムです。
// パスワードハッシュは一覧には含めません。
var listColumns = []string{"id", "email", "username", "avatar", "status", "face_descriptor"}

// userMySQL はUserRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type userMySQL struct {
	db *gorm.DB
}

// userMySQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMySQL)(nil)

// NewUserMySQL は指定されたgorm.DB接続でuserMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserMySQL(db *gorm.DB) *userMySQL {
	return &userMySQL{db: db}
}

// isDuplicateKey はドライバー固有のユニークキー重複エラーを判定します。
func isDuplicateKey(err error) bool {
	// MySQLエラー1062: ユニークキーの重複エントリ
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// PostgreSQL SQLSTATE 23505: unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Create はユーザーをデータベースに追加します。
// 同じユーザー名またはメールアドレスのユーザーが既に存在する場合、
// usecase.ErrUserAlreadyExistsを返します。
func (r *userMySQL) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// FindAll は全ユーザーを一覧用のカラム射影で取得します。
func (r *userMySQL) FindAll(ctx context.Context) ([]entity.User, error) {
	users := []entity.User{}
	if err := r.db.WithContext(ctx).Select(listColumns).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsername はユーザー名でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update は部分更新を適用し、影響を受けた行数を返します。
// nilでないフィールドのみをカラムに書き込み、updated_atは常に更新します。
func (r *userMySQL) Update(ctx context.Context, id uint, changes entity.UserChanges) (int64, error) {
	values := map[string]any{"updated_at": time.Now()}
	if changes.Username != nil {
		values["username"] = *changes.Username
	}
	if changes.Email != nil {
		values["email"] = *changes.Email
	}
	if changes.Password != nil {
		values["password"] = *changes.Password
	}
	if changes.Avatar != nil {
		// 指し先がnilスライスの場合、カラムはNULLにクリアされます
		values["avatar"] = *changes.Avatar
	}
	if changes.Status != nil {
		values["status"] = *changes.Status
	}
	if changes.IsMuted != nil {
		values["is_muted"] = *changes.IsMuted
	}
	if changes.IsHeadphonesOn != nil {
		values["is_headphones_on"] = *changes.IsHeadphonesOn
	}
	if changes.FaceDescriptor != nil {
		values["face_descriptor"] = *changes.FaceDescriptor
	}

	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete はユーザーの行を削除します。
func (r *userMySQL) Delete(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Delete(u).Error
}
