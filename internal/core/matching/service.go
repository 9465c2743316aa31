package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MatchService は学生とプロジェクト・コース間の双方向マッチングを提供する。
// パイプラインは 埋め込み解決 → コサイン類似度による一次検索 →
// ルールベースの再スコアリング → rerank → 理由文生成 の順に進む。
// 外部プロバイダ（埋め込み・rerank・LLM）はいずれも任意であり、
// 未設定でもルールベースの結果に劣化して動作する。
type MatchService struct {
	repo      Repository
	resolver  *EmbeddingResolver
	reranker  *Reranker
	rationale *RationaleGenerator
	cfg       MatchingConfig
	logger    *slog.Logger
}

// MatchServiceOption は MatchService のオプション設定
type MatchServiceOption func(*MatchService)

// WithMatchLogger は MatchService にロガーを設定する
func WithMatchLogger(logger *slog.Logger) MatchServiceOption {
	return func(s *MatchService) {
		s.logger = logger
	}
}

// NewMatchService は新しい MatchService を作成する。
// embedder / rerankProvider / completer は nil を許容する。
func NewMatchService(
	repo Repository,
	embedder EmbeddingProvider,
	rerankProvider RerankProvider,
	completer CompletionClient,
	cfg MatchingConfig,
	opts ...MatchServiceOption,
) *MatchService {
	cfg = cfg.withDefaults()

	s := &MatchService{
		repo:   repo,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.resolver = NewEmbeddingResolver(embedder, cfg.Dimension, WithResolverLogger(s.logger))
	s.reranker = NewReranker(rerankProvider, WithRerankerLogger(s.logger))
	s.rationale = NewRationaleGenerator(completer, WithRationaleLogger(s.logger))
	return s
}

// poolEntry は候補プールの1件。埋め込みの解決・採点・理由文生成に
// 必要な情報をエンティティ種別に依存しない形で持つ。
type poolEntry struct {
	id    uuid.UUID
	kind  string
	title string
	doc   string
	raw   any

	save      func(ctx context.Context, id uuid.UUID, embedding Vector) error
	score     func(similarity float64) ScoreBreakdown
	rationale func(b ScoreBreakdown) RationaleContext
}

// FindMatchingProjects は指定学生に合うプロジェクトを推薦する。
// 学生が存在しない場合は ErrStudentNotFound を返す。学生の埋め込みが
// 解決できない場合は空の結果を返す（エラーにしない）。
func (s *MatchService) FindMatchingProjects(ctx context.Context, studentID uuid.UUID, params MatchParams) ([]MatchResult, error) {
	initialK, finalK := params.resolve(s.cfg)

	studentOpt, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	student, ok := studentOpt.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}

	queryText := studentQueryText(student)
	queryVector, ok := s.resolveQueryEmbedding(ctx, "student", student.ID, student.Embedding, queryText, s.repo.SaveStudentEmbedding)
	if !ok {
		s.logger.Warn("student embedding could not be resolved, returning empty result",
			"studentID", studentID.String())
		return []MatchResult{}, nil
	}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	pool := make([]poolEntry, 0, len(projects))
	for _, project := range projects {
		pool = append(pool, s.projectPoolEntry(student, project))
	}

	return s.run(ctx, queryText, queryVector, pool, initialK, finalK), nil
}

// FindMatchingCourses は指定学生に合うコースを推薦する
func (s *MatchService) FindMatchingCourses(ctx context.Context, studentID uuid.UUID, params MatchParams) ([]MatchResult, error) {
	initialK, finalK := params.resolve(s.cfg)

	studentOpt, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	student, ok := studentOpt.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}

	queryText := studentQueryText(student)
	queryVector, ok := s.resolveQueryEmbedding(ctx, "student", student.ID, student.Embedding, queryText, s.repo.SaveStudentEmbedding)
	if !ok {
		s.logger.Warn("student embedding could not be resolved, returning empty result",
			"studentID", studentID.String())
		return []MatchResult{}, nil
	}

	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	pool := make([]poolEntry, 0, len(courses))
	for _, course := range courses {
		pool = append(pool, s.coursePoolEntry(student, course))
	}

	return s.run(ctx, queryText, queryVector, pool, initialK, finalK), nil
}

// FindMatchingStudents は指定プロジェクトに合う学生を推薦する。
// プロジェクトが存在しない場合は ErrProjectNotFound を返す。
func (s *MatchService) FindMatchingStudents(ctx context.Context, projectID uuid.UUID, params MatchParams) ([]MatchResult, error) {
	initialK, finalK := params.resolve(s.cfg)

	projectOpt, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	project, ok := projectOpt.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	queryText := projectQueryText(project)
	queryVector, ok := s.resolveQueryEmbedding(ctx, "project", project.ID, project.Embedding, queryText, s.repo.SaveProjectEmbedding)
	if !ok {
		s.logger.Warn("project embedding could not be resolved, returning empty result",
			"projectID", projectID.String())
		return []MatchResult{}, nil
	}

	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	pool := make([]poolEntry, 0, len(students))
	for _, student := range students {
		pool = append(pool, s.studentPoolEntry(project, student))
	}

	return s.run(ctx, queryText, queryVector, pool, initialK, finalK), nil
}

// run はクエリと候補プールからマッチング結果を構築する共通パイプライン
func (s *MatchService) run(ctx context.Context, queryText string, queryVector Vector, pool []poolEntry, initialK, finalK int) []MatchResult {
	if len(pool) == 0 {
		return []MatchResult{}
	}

	vectors := s.resolvePoolEmbeddings(ctx, pool)

	retrieved := TopKBySimilarity(queryVector, vectors, initialK, s.cfg.Dimension)
	if len(retrieved) == 0 {
		return []MatchResult{}
	}

	candidates := make([]MatchCandidate, 0, len(retrieved))
	for _, r := range retrieved {
		entry := pool[r.Index]
		breakdown := entry.score(r.Similarity)
		breakdown.Combined = s.cfg.Combine(breakdown)
		candidates = append(candidates, MatchCandidate{
			TargetID:         entry.id,
			Title:            entry.title,
			Document:         entry.doc,
			Breakdown:        breakdown,
			rationaleContext: entry.rationale,
		})
	}
	SortByCombined(candidates)

	ranked := s.reranker.Rank(ctx, queryText, candidates, finalK)

	// 理由文の生成は最終候補ごとに独立なので並行に行う
	results := make([]MatchResult, len(ranked))
	var wg sync.WaitGroup
	for i, match := range ranked {
		wg.Add(1)
		go func(i int, match RankedMatch) {
			defer wg.Done()

			rationale := FallbackRationale(match.Candidate.Breakdown)
			if match.Candidate.rationaleContext != nil {
				rationale = s.rationale.Generate(ctx, match.Candidate.rationaleContext(match.Candidate.Breakdown))
			}
			results[i] = MatchResult{
				TargetID:  match.Candidate.TargetID,
				Title:     match.Candidate.Title,
				Breakdown: match.Candidate.Breakdown,
				Relevance: match.Relevance,
				Rationale: rationale,
			}
		}(i, match)
	}
	wg.Wait()

	return results
}

// resolvePoolEmbeddings はプール全体の埋め込みを並行に解決する。
// 再生成された埋め込みはベストエフォートで永続化し、失敗しても続行する。
func (s *MatchService) resolvePoolEmbeddings(ctx context.Context, pool []poolEntry) []Vector {
	vectors := make([]Vector, len(pool))

	semaphore := make(chan struct{}, s.cfg.EmbedWorkers)
	var wg sync.WaitGroup
	for i, entry := range pool {
		wg.Add(1)
		go func(i int, entry poolEntry) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			vector, regenerated := s.resolver.Resolve(ctx, entry.kind, entry.id, entry.raw, entry.doc)
			vectors[i] = vector

			if regenerated && entry.save != nil {
				if err := entry.save(ctx, entry.id, vector); err != nil {
					s.logger.Warn("failed to persist regenerated embedding",
						"kind", entry.kind, "id", entry.id.String(), "error", err)
				}
			}
		}(i, entry)
	}
	wg.Wait()

	return vectors
}

// resolveQueryEmbedding はクエリ側エンティティの埋め込みを解決する。
// 2つ目の戻り値は解決に成功したか（プレースホルダでないか）を示す。
func (s *MatchService) resolveQueryEmbedding(
	ctx context.Context,
	kind string,
	id uuid.UUID,
	raw any,
	combinedText string,
	save func(ctx context.Context, id uuid.UUID, embedding Vector) error,
) (Vector, bool) {
	vector, regenerated := s.resolver.Resolve(ctx, kind, id, raw, combinedText)
	if regenerated && save != nil {
		if err := save(ctx, id, vector); err != nil {
			s.logger.Warn("failed to persist regenerated embedding",
				"kind", kind, "id", id.String(), "error", err)
		}
	}
	return vector, !vector.IsZero()
}

func (s *MatchService) projectPoolEntry(student *Student, project *Project) poolEntry {
	return poolEntry{
		id:    project.ID,
		kind:  "project",
		title: project.Title,
		doc:   projectQueryText(project),
		raw:   project.Embedding,
		save:  s.repo.SaveProjectEmbedding,
		score: func(similarity float64) ScoreBreakdown {
			return ScoreBreakdown{
				Similarity:  similarity,
				Proficiency: s.cfg.ScoreProficiency(student.Skills, project.RequiredSkills),
				Time:        s.cfg.ScoreTime(student, project),
				Location:    ScoreLocation(student.Location, project.Location),
			}
		},
		rationale: func(b ScoreBreakdown) RationaleContext {
			return buildRationaleContext(student, project.Title, project.Description, b)
		},
	}
}

func (s *MatchService) coursePoolEntry(student *Student, course *Course) poolEntry {
	return poolEntry{
		id:    course.ID,
		kind:  "course",
		title: course.Title,
		doc:   courseQueryText(course),
		raw:   course.Embedding,
		save:  s.repo.SaveCourseEmbedding,
		score: func(similarity float64) ScoreBreakdown {
			return ScoreBreakdown{
				Similarity:  similarity,
				Proficiency: s.cfg.ScoreProficiency(student.Skills, course.RequiredSkills),
				Time:        s.cfg.ScoreTime(student, course),
				// コースは開催地を持たないためカテゴリを照合対象にする
				Location: ScoreLocation(student.Location, course.Category),
			}
		},
		rationale: func(b ScoreBreakdown) RationaleContext {
			return buildRationaleContext(student, course.Title, course.Description, b)
		},
	}
}

func (s *MatchService) studentPoolEntry(project *Project, student *Student) poolEntry {
	return poolEntry{
		id:    student.ID,
		kind:  "student",
		title: student.Name,
		doc:   studentQueryText(student),
		raw:   student.Embedding,
		save:  s.repo.SaveStudentEmbedding,
		score: func(similarity float64) ScoreBreakdown {
			return ScoreBreakdown{
				Similarity:  similarity,
				Proficiency: s.cfg.ScoreProficiency(student.Skills, project.RequiredSkills),
				Time:        s.cfg.ScoreTime(student, project),
				Location:    ScoreLocation(student.Location, project.Location),
			}
		},
		rationale: func(b ScoreBreakdown) RationaleContext {
			return buildRationaleContext(student, project.Title, project.Description, b)
		},
	}
}

func buildRationaleContext(student *Student, targetTitle, targetDescription string, b ScoreBreakdown) RationaleContext {
	return RationaleContext{
		StudentName:         student.Name,
		StudentMajor:        student.Major,
		StudentSkills:       student.Skills,
		StudentInterests:    student.Interests,
		StudentAvailability: student.Availability,
		StudentLocation:     student.Location,
		TargetTitle:         targetTitle,
		TargetDescription:   targetDescription,
		Breakdown:           b,
	}
}

func studentQueryText(student *Student) string {
	if student.CombinedText != "" {
		return student.CombinedText
	}
	return BuildStudentCombinedText(student)
}

func projectQueryText(project *Project) string {
	if project.CombinedText != "" {
		return project.CombinedText
	}
	return BuildProjectCombinedText(project)
}

func courseQueryText(course *Course) string {
	if course.CombinedText != "" {
		return course.CombinedText
	}
	return BuildCourseCombinedText(course)
}
