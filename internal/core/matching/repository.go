package matching

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

var (
	// ErrStudentNotFound は指定IDの学生が存在しない場合のエラー
	ErrStudentNotFound = errors.New("student not found")

	// ErrProjectNotFound は指定IDのプロジェクトが存在しない場合のエラー
	ErrProjectNotFound = errors.New("project not found")
)

// Repository はマッチングに必要な全データアクセスを統合するインターフェース。
// エンティティと埋め込みの所有権は外部のデータ層にあり、このコアは
// 1リクエストの間それらを読み取り専用の入力として扱う。唯一の副作用は
// 再生成された埋め込みのベストエフォートな保存である。
type Repository interface {
	// GetStudent はIDで学生を取得する
	GetStudent(ctx context.Context, id uuid.UUID) (mo.Option[*Student], error)

	// GetProject はIDでプロジェクトを取得する
	GetProject(ctx context.Context, id uuid.UUID) (mo.Option[*Project], error)

	// ListStudents は候補プール全体（全学生）を取得する
	ListStudents(ctx context.Context) ([]*Student, error)

	// ListProjects は候補プール全体（全プロジェクト）を取得する
	ListProjects(ctx context.Context) ([]*Project, error)

	// ListCourses は候補プール全体（全コース）を取得する
	ListCourses(ctx context.Context) ([]*Course, error)

	// SaveStudentEmbedding は再生成した学生の埋め込みを保存する
	SaveStudentEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error

	// SaveProjectEmbedding は再生成したプロジェクトの埋め込みを保存する
	SaveProjectEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error

	// SaveCourseEmbedding は再生成したコースの埋め込みを保存する
	SaveCourseEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error
}
