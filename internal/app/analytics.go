package app

import "course-quiz-engine/internal/domain"

// Participation counts registered attempts against the course roster.
func Participation(quiz *Quiz, course domain.Course) domain.Participation {
	return domain.Participation{
		Attempted: quiz.AttemptCount(),
		Enrolled:  len(course.StudentIDs),
	}
}

// QuestionCorrectness returns, in authored order, how many attempts answered
// each question correctly. Every attempt counts towards Attempted, whether or
// not it answered that question. Answers are checked against the attempt's
// own presentation of the question, since option order differs per attempt.
func QuestionCorrectness(quiz *Quiz) []domain.QuestionStat {
	attempts := quiz.Attempts()
	questions := quiz.Questions()

	stats := make([]domain.QuestionStat, 0, len(questions))
	for _, q := range questions {
		stat := domain.QuestionStat{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Attempted:  len(attempts),
		}
		for _, a := range attempts {
			answer, ok := a.Answer(q.ID)
			if !ok {
				continue
			}
			presented, ok := a.Question(q.ID)
			if !ok {
				presented = q
			}
			if presented.CheckAnswer(answer) {
				stat.Correct++
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

// Analyze bundles participation and per-question correctness.
func Analyze(quiz *Quiz, course domain.Course) domain.QuizAnalytics {
	return domain.QuizAnalytics{
		CourseID:      quiz.CourseID(),
		QuizID:        quiz.ID(),
		Participation: Participation(quiz, course),
		Questions:     QuestionCorrectness(quiz),
	}
}
