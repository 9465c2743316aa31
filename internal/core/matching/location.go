package matching

import "strings"

// majorCities は都市レベルの一致判定に使う都市リスト（大湾区の主要都市）
var majorCities = []string{
	"广州", "深圳", "珠海", "佛山", "东莞", "惠州", "中山", "江门", "肇庆", "香港", "澳门",
}

// ScoreLocation は2つの地理的位置テキストの親和度を段階評価で返す。
// 両方空=0.2 / 片方空=0.3 / 完全一致=1.0 / 包含=0.8 / 同一都市=0.6 / その他=0.1
func ScoreLocation(personLocation, targetLocation string) float64 {
	person := strings.ToLower(strings.TrimSpace(personLocation))
	target := strings.ToLower(strings.TrimSpace(targetLocation))

	if person == "" && target == "" {
		return 0.2
	}
	if person == "" || target == "" {
		return 0.3
	}

	if person == target {
		return 1.0
	}

	if strings.Contains(person, target) || strings.Contains(target, person) {
		return 0.8
	}

	var personCity, targetCity string
	for _, city := range majorCities {
		if strings.Contains(person, city) {
			personCity = city
		}
		if strings.Contains(target, city) {
			targetCity = city
		}
		if personCity != "" && targetCity != "" {
			break
		}
	}
	if personCity != "" && personCity == targetCity {
		return 0.6
	}

	return 0.1
}
