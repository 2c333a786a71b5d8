package feedbackgen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type topic int

const (
	topicGeneral topic = iota
	topicLeadership
	topicCommunication
	topicTeamwork
	topicStrengths
	topicImprovement
)

const maxListed = 3

// Rules produces deterministic templated feedback from the scores alone.
type Rules struct{}

func NewRules() Rules {
	return Rules{}
}

func (Rules) Name() string {
	return "rules"
}

type scoreProfile struct {
	count        int
	avg          float64
	max          float64
	min          float64
	strengths    []string
	improvements []string
}

func (r Rules) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	profile, ok := buildProfile(req.Quantitative)
	if !ok {
		return Result{}, ErrNoScores
	}

	feedback := make(map[string]string, len(req.Qualitative))
	for _, prompt := range req.Qualitative {
		feedback[prompt.QuestionID] = compose(classify(prompt.Question), profile)
	}
	summary := fmt.Sprintf("%s Average score %s out of 5 across %d answered questions.", DefaultSummary, formatScore(profile.avg), profile.count)
	return Result{Feedback: feedback, Summary: summary, Provider: r.Name()}, nil
}

func buildProfile(answers []ScoredAnswer) (scoreProfile, bool) {
	var p scoreProfile
	total := 0.0
	for _, answer := range answers {
		score, ok := Normalise(answer.Answer, answer.Scale)
		if !ok {
			continue
		}
		if p.count == 0 || score > p.max {
			p.max = score
		}
		if p.count == 0 || score < p.min {
			p.min = score
		}
		p.count++
		total += score
		if score >= 4 && len(p.strengths) < maxListed {
			p.strengths = append(p.strengths, answer.Question)
		}
		if score <= 3 && len(p.improvements) < maxListed {
			p.improvements = append(p.improvements, answer.Question)
		}
	}
	if p.count == 0 {
		return p, false
	}
	p.avg = total / float64(p.count)
	return p, true
}

// Normalise maps an answer onto the five-point band used by the templates.
func Normalise(answer, scale string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(answer), "%")), 64)
	if err != nil {
		return 0, false
	}
	switch scale {
	case "1-10":
		value = value / 2
	case "0-100", "Percentage":
		value = value / 20
	}
	if value < 0 {
		value = 0
	}
	if value > 5 {
		value = 5
	}
	return value, true
}

func classify(question string) topic {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "leadership") || strings.Contains(q, "lead"):
		return topicLeadership
	case strings.Contains(q, "communication") || strings.Contains(q, "communicate"):
		return topicCommunication
	case strings.Contains(q, "teamwork") || strings.Contains(q, "team") || strings.Contains(q, "collaboration"):
		return topicTeamwork
	case strings.Contains(q, "strength") || strings.Contains(q, "strong"):
		return topicStrengths
	case strings.Contains(q, "improvement") || strings.Contains(q, "develop") || strings.Contains(q, "growth"):
		return topicImprovement
	default:
		return topicGeneral
	}
}

func compose(t topic, p scoreProfile) string {
	avg, hi, lo := formatScore(p.avg), formatScore(p.max), formatScore(p.min)
	band := 0
	switch {
	case p.avg >= 4:
		band = 2
	case p.avg >= 3:
		band = 1
	}

	switch t {
	case topicLeadership:
		return [...]string{
			fmt.Sprintf("Leadership is still developing, with an average score of %s. Your best result (%s) is a base to build on; start with small ownership opportunities such as leading a meeting or a short project and widen the scope as confidence grows.", avg, hi),
			fmt.Sprintf("Your scores show a solid leadership foundation, averaging %s. Your strongest area scored %s while the weakest scored %s; mentoring or a leadership course aimed at that gap would round out your profile.", avg, hi, lo),
			fmt.Sprintf("Your scores point to strong leadership, averaging %s with a top score of %s. You perform consistently and can guide others; taking on more visible leadership responsibility is a natural next step.", avg, hi),
		}[band]
	case topicCommunication:
		return [...]string{
			fmt.Sprintf("Communication is an area to invest in, with an average score of %s. Your highest score (%s) shows a starting strength; structured practice, presentation training and regular feedback will help.", avg, hi),
			fmt.Sprintf("Your communication is good, averaging %s. Build on the area that scored %s and work on the one that scored %s; active listening and asking for feedback on your style are good levers.", avg, hi, lo),
			fmt.Sprintf("Your communication is excellent, averaging %s with a top score of %s. You convey ideas clearly across contexts; consider coaching colleagues who are developing this skill.", avg, hi),
		}[band]
	case topicTeamwork:
		return [...]string{
			fmt.Sprintf("Collaboration has room to grow, with an average score of %s. Your highest score (%s) shows where you already contribute; focus on building relationships and joining group work more actively.", avg, hi),
			fmt.Sprintf("You are a dependable team member, averaging %s. Your strongest collaborative area scored %s; raising the area that scored %s would make you even more effective. Leading a team project is a good stretch goal.", avg, hi, lo),
			fmt.Sprintf("You excel at teamwork, averaging %s with a top score of %s. You strengthen team dynamics and help others do their best work; consider mentoring new team members.", avg, hi),
		}[band]
	case topicStrengths:
		if len(p.strengths) > 0 {
			return fmt.Sprintf("Your key strengths are: %s. Each scored 4 or higher, and your overall average of %s reflects solid performance. Look for new challenges where these strengths make a difference.", strings.Join(p.strengths, ", "), avg)
		}
		return fmt.Sprintf("Your performance is consistent, averaging %s, without a single standout area yet. Your highest score (%s) marks the most promising strength to develop further.", avg, hi)
	case topicImprovement:
		if len(p.improvements) > 0 {
			return fmt.Sprintf("Areas for improvement are: %s. Each scored 3 or lower. With an overall average of %s, a focused development plan with training and regular feedback on these areas will have the most impact.", strings.Join(p.improvements, ", "), avg)
		}
		return fmt.Sprintf("No area scored 3 or lower and your average is %s. Keep stretching yourself in the area that scored lowest (%s) to keep growing.", avg, lo)
	default:
		return [...]string{
			fmt.Sprintf("Your assessment shows clear development opportunities, with an average score of %s. Your highest score (%s) shows strengths to build on; a plan targeting the lowest area (%s) with support and training is recommended.", avg, hi, lo),
			fmt.Sprintf("Your performance is solid, averaging %s. Your highest score (%s) marks where you excel and your lowest (%s) where to focus next.", avg, hi, lo),
			fmt.Sprintf("Your overall performance is excellent, averaging %s with a top score of %s. Keep building on these strengths and consider more challenging responsibilities.", avg, hi),
		}[band]
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(float64(int(v*10+0.5))/10, 'f', -1, 64)
}
