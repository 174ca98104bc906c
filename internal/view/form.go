package view

// QuizForm 页面内嵌测验表单，记录每道题当前选中的选项
type QuizForm struct {
	selections map[int]string
}

func NewQuizForm() *QuizForm {
	return &QuizForm{selections: make(map[int]string)}
}

// Select 单选：同一道题的新选择覆盖旧选择
func (f *QuizForm) Select(quizID int, key string) {
	f.selections[quizID] = key
}

func (f *QuizForm) Selected(quizID int) (string, bool) {
	key, ok := f.selections[quizID]
	return key, ok
}

func (f *QuizForm) Len() int {
	return len(f.selections)
}
