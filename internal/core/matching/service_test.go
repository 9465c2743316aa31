package matching

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	students map[uuid.UUID]*Student
	projects map[uuid.UUID]*Project
	courses  []*Course

	mu           sync.Mutex
	savedStudent map[uuid.UUID]Vector
	savedProject map[uuid.UUID]Vector
	savedCourse  map[uuid.UUID]Vector
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		students:     make(map[uuid.UUID]*Student),
		projects:     make(map[uuid.UUID]*Project),
		savedStudent: make(map[uuid.UUID]Vector),
		savedProject: make(map[uuid.UUID]Vector),
		savedCourse:  make(map[uuid.UUID]Vector),
	}
}

func (r *stubRepository) GetStudent(ctx context.Context, id uuid.UUID) (mo.Option[*Student], error) {
	if student, ok := r.students[id]; ok {
		return mo.Some(student), nil
	}
	return mo.None[*Student](), nil
}

func (r *stubRepository) GetProject(ctx context.Context, id uuid.UUID) (mo.Option[*Project], error) {
	if project, ok := r.projects[id]; ok {
		return mo.Some(project), nil
	}
	return mo.None[*Project](), nil
}

func (r *stubRepository) ListStudents(ctx context.Context) ([]*Student, error) {
	students := make([]*Student, 0, len(r.students))
	for _, student := range r.students {
		students = append(students, student)
	}
	return students, nil
}

func (r *stubRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	projects := make([]*Project, 0, len(r.projects))
	for _, project := range r.projects {
		projects = append(projects, project)
	}
	return projects, nil
}

func (r *stubRepository) ListCourses(ctx context.Context) ([]*Course, error) {
	return r.courses, nil
}

func (r *stubRepository) SaveStudentEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedStudent[id] = embedding
	return nil
}

func (r *stubRepository) SaveProjectEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedProject[id] = embedding
	return nil
}

func (r *stubRepository) SaveCourseEmbedding(ctx context.Context, id uuid.UUID, embedding Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedCourse[id] = embedding
	return nil
}

var _ Repository = (*stubRepository)(nil)

func testMatchConfig() MatchingConfig {
	return MatchingConfig{Dimension: 3}
}

func newTestStudent(embedding any) *Student {
	return &Student{
		ID:           uuid.New(),
		Name:         "李明",
		Major:        "计算机科学",
		Skills:       []any{skillRecord("Python", "融会贯通")},
		Availability: "每周15-20小时",
		Location:     "深圳",
		Embedding:    embedding,
	}
}

func TestMatchService_FindMatchingProjects(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent([]float64{1, 0, 0})
	repo.students[student.ID] = student

	near := &Project{
		ID:             uuid.New(),
		Title:          "智能推荐系统",
		RequiredSkills: []any{skillRecord("Python", "登堂入室")},
		Location:       "深圳",
		Embedding:      []float64{1, 0, 0},
	}
	far := &Project{
		ID:             uuid.New(),
		Title:          "嵌入式开发",
		RequiredSkills: []any{skillRecord("C", "炉火纯青")},
		Location:       "北京",
		Embedding:      []float64{0, 1, 0},
	}
	unresolved := &Project{
		ID:        uuid.New(),
		Title:     "无向量项目",
		Embedding: nil, // プロバイダなしでは解決できず除外される
	}
	repo.projects[near.ID] = near
	repo.projects[far.ID] = far
	repo.projects[unresolved.ID] = unresolved

	svc := NewMatchService(repo, nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingProjects(context.Background(), student.ID, MatchParams{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, near.ID, results[0].TargetID)
	assert.Equal(t, "智能推荐系统", results[0].Title)
	assert.Equal(t, far.ID, results[1].TargetID)

	for _, result := range results {
		// rerank なしでは関連度は合成スコアと一致する
		assert.InDelta(t, result.Breakdown.Combined, result.Relevance, 1e-9)
		// LLM なしでは理由文は定型文になる
		assert.Equal(t, FallbackRationale(result.Breakdown), result.Rationale)
		assert.InDelta(t,
			DefaultMatchingConfig().Combine(result.Breakdown),
			result.Breakdown.Combined, 1e-9)
	}
	assert.Greater(t, results[0].Breakdown.Combined, results[1].Breakdown.Combined)
}

func TestMatchService_FindMatchingProjects_StudentNotFound(t *testing.T) {
	svc := NewMatchService(newStubRepository(), nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	_, err := svc.FindMatchingProjects(context.Background(), uuid.New(), MatchParams{})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestMatchService_FindMatchingStudents_ProjectNotFound(t *testing.T) {
	svc := NewMatchService(newStubRepository(), nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	_, err := svc.FindMatchingStudents(context.Background(), uuid.New(), MatchParams{})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestMatchService_UnresolvableQueryEmbeddingReturnsEmpty(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent(nil)
	repo.students[student.ID] = student

	svc := NewMatchService(repo, nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingProjects(context.Background(), student.ID, MatchParams{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatchService_RegeneratedQueryEmbeddingIsPersisted(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent(nil) // 保存値なし → 再生成される
	repo.students[student.ID] = student

	project := &Project{ID: uuid.New(), Title: "项目", Embedding: []float64{1, 0, 0}}
	repo.projects[project.ID] = project

	embedder := &stubEmbeddingProvider{vectors: [][]float32{{1, 0, 0}}}
	svc := NewMatchService(repo, embedder, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingProjects(context.Background(), student.ID, MatchParams{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, embedder.called)
	assert.Equal(t, Vector{1, 0, 0}, repo.savedStudent[student.ID])
}

func TestMatchService_RerankOverridesOrderAndRelevance(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent([]float64{1, 0, 0})
	repo.students[student.ID] = student

	first := &Project{ID: uuid.New(), Title: "A", Embedding: []float64{1, 0, 0}}
	second := &Project{ID: uuid.New(), Title: "B", Embedding: []float64{0.9, 0.1, 0}}
	repo.projects[first.ID] = first
	repo.projects[second.ID] = second

	// 合成スコアでは first が上位だが、rerank は second を最上位にする
	reranker := &stubRerankProvider{
		results: []RerankResult{
			{Index: 1, RelevanceScore: 0.99},
			{Index: 0, RelevanceScore: 0.10},
		},
	}
	svc := NewMatchService(repo, nil, reranker, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingProjects(context.Background(), student.ID, MatchParams{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, second.ID, results[0].TargetID)
	assert.InDelta(t, 0.99, results[0].Relevance, 1e-9)
	assert.Equal(t, first.ID, results[1].TargetID)
}

func TestMatchService_FinalKLimitsResults(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent([]float64{1, 0, 0})
	repo.students[student.ID] = student

	for i := 0; i < 5; i++ {
		project := &Project{ID: uuid.New(), Title: "项目", Embedding: []float64{1, float64(i) * 0.1, 0}}
		repo.projects[project.ID] = project
	}

	svc := NewMatchService(repo, nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingProjects(context.Background(), student.ID, MatchParams{FinalK: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMatchService_FindMatchingCourses(t *testing.T) {
	repo := newStubRepository()
	student := newTestStudent([]float64{1, 0, 0})
	repo.students[student.ID] = student

	repo.courses = []*Course{
		{
			ID:             uuid.New(),
			Title:          "数据结构",
			Category:       "计算机基础",
			RequiredSkills: []any{skillRecord("Python", "初窥门径")},
			Embedding:      []float64{1, 0, 0},
		},
	}

	svc := NewMatchService(repo, nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingCourses(context.Background(), student.ID, MatchParams{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "数据结构", result.Title)
	// コースの時間スコアは固定値 0.9 * 3.0
	assert.InDelta(t, 2.7, result.Breakdown.Time, 1e-9)
	// 技能は要求水準を満たすので満点
	assert.InDelta(t, 5.0, result.Breakdown.Proficiency, 1e-9)
}

func TestMatchService_FindMatchingStudents(t *testing.T) {
	repo := newStubRepository()

	project := &Project{
		ID:             uuid.New(),
		Title:          "智能推荐系统",
		RequiredSkills: []any{skillRecord("Python", "登堂入室")},
		Location:       "深圳",
		Embedding:      []float64{1, 0, 0},
	}
	repo.projects[project.ID] = project

	fit := newTestStudent([]float64{1, 0, 0})
	other := newTestStudent([]float64{0, 1, 0})
	other.Name = "王芳"
	repo.students[fit.ID] = fit
	repo.students[other.ID] = other

	svc := NewMatchService(repo, nil, nil, nil, testMatchConfig(), WithMatchLogger(discardLogger()))

	results, err := svc.FindMatchingStudents(context.Background(), project.ID, MatchParams{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, fit.ID, results[0].TargetID)
	assert.Equal(t, "李明", results[0].Title)
}
