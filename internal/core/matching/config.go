package matching

// MatchingConfig はマッチングエンジンの数値パラメータを集約する。
// グローバル定数ではなく明示的に受け渡すことで、呼び出し単位の上書きと
// テストでの差し替えを可能にする。
type MatchingConfig struct {
	// InitialK は一次検索で取得する候補数
	InitialK int
	// FinalK は最終的に返す推薦件数
	FinalK int
	// Dimension は埋め込みベクトルの次元数
	Dimension int

	// 合成スコアの基準別重み
	SimilarityWeight  float64
	ProficiencyWeight float64
	TimeWeight        float64
	LocationWeight    float64

	// SkillOverallWeight は技能スコアの上限（正規化後に乗算）
	SkillOverallWeight float64
	// TimeOverallWeight は時間スコアの上限（正規化後に乗算）
	TimeOverallWeight float64

	// EmbedWorkers は候補プールの埋め込み再生成を並列化するワーカー数
	EmbedWorkers int
}

// DefaultMatchingConfig はデフォルトのマッチング設定を返す
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		InitialK:           50,
		FinalK:             3,
		Dimension:          1024,
		SimilarityWeight:   0.5,
		ProficiencyWeight:  0.3,
		TimeWeight:         0.1,
		LocationWeight:     0.1,
		SkillOverallWeight: 5.0,
		TimeOverallWeight:  3.0,
		EmbedWorkers:       4,
	}
}

// withDefaults はゼロ値のフィールドをデフォルト設定で補完する
func (c MatchingConfig) withDefaults() MatchingConfig {
	def := DefaultMatchingConfig()
	if c.InitialK <= 0 {
		c.InitialK = def.InitialK
	}
	if c.FinalK <= 0 {
		c.FinalK = def.FinalK
	}
	if c.Dimension <= 0 {
		c.Dimension = def.Dimension
	}
	if c.SimilarityWeight == 0 && c.ProficiencyWeight == 0 && c.TimeWeight == 0 && c.LocationWeight == 0 {
		c.SimilarityWeight = def.SimilarityWeight
		c.ProficiencyWeight = def.ProficiencyWeight
		c.TimeWeight = def.TimeWeight
		c.LocationWeight = def.LocationWeight
	}
	if c.SkillOverallWeight <= 0 {
		c.SkillOverallWeight = def.SkillOverallWeight
	}
	if c.TimeOverallWeight <= 0 {
		c.TimeOverallWeight = def.TimeOverallWeight
	}
	if c.EmbedWorkers <= 0 {
		c.EmbedWorkers = def.EmbedWorkers
	}
	return c
}

// MatchParams は呼び出し単位のパラメータ。ゼロ値は設定のデフォルトが適用される。
type MatchParams struct {
	InitialK int
	FinalK   int
}

func (p MatchParams) resolve(cfg MatchingConfig) (initialK, finalK int) {
	initialK = p.InitialK
	if initialK <= 0 {
		initialK = cfg.InitialK
	}
	finalK = p.FinalK
	if finalK <= 0 {
		finalK = cfg.FinalK
	}
	return initialK, finalK
}
