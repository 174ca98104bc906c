package wire

// Type 消息类型判别字段
type Type string

const (
	TypeChatMessage           Type = "chat_message"
	TypeSummarizingStart      Type = "summarizing_start"
	TypeChunkSummary          Type = "chunk_summary"
	TypeFinalSummary          Type = "final_summary"
	TypeQuiz                  Type = "quiz"
	TypeRanking               Type = "ranking"
	TypeError                 Type = "error"
	TypeNotification          Type = "notification"
	TypeQuizStartNotification Type = "quiz_start_notification"
	TypeQuizResponse          Type = "quiz_response"
)

// RankingMaxScore 排行榜分数满分
const RankingMaxScore = 5

// ChatMessage 服务端广播的聊天消息
type ChatMessage struct {
	UserID       *int64   `json:"user_id,omitempty"`
	Username     string   `json:"username"`
	Message      string   `json:"message"`
	Timestamp    string   `json:"timestamp"`
	IsAIResponse bool     `json:"is_ai_response"`
	Mentions     []string `json:"mentions,omitempty"`
}

// SummarizingStart 房间开始总结文档
type SummarizingStart struct {
	Message string `json:"message,omitempty"`
}

// ChunkSummary 分段总结进度
type ChunkSummary struct {
	Summary     string `json:"summary"`
	ChunkNumber int    `json:"chunk_number"`
}

// FinalSummary 文档最终总结
type FinalSummary struct {
	PDFName  string `json:"pdf_name"`
	Username string `json:"username"`
	Summary  string `json:"summary"`
}

// Quiz 单道测验题
type Quiz struct {
	ID       int     `json:"id" yaml:"Id"`
	Question string  `json:"question" yaml:"Question"`
	Options  Options `json:"options" yaml:"Options"`
}

// QuizBatch 服务端推送的测验题列表
type QuizBatch struct {
	Quizzes []Quiz `json:"quizzes"`
}

// Ranking 测验排行榜，顺序由服务端决定
type Ranking struct {
	Rankings []RankingEntry `json:"rankings"`
}

// ErrorEvent 服务端业务错误
type ErrorEvent struct {
	Message string `json:"message"`
}

// Notification 房间通知
type Notification struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// QuizStartNotification 测验开始通知
type QuizStartNotification struct {
	Message string `json:"message"`
}

// OutboundChatMessage 客户端发送的聊天消息
type OutboundChatMessage struct {
	Type     Type   `json:"type"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// QuizResponse 客户端提交的单题答案
type QuizResponse struct {
	Type           Type   `json:"type"`
	QuizID         int    `json:"quiz_id"`
	SelectedAnswer string `json:"selected_answer"`
	Username       string `json:"username"`
}

// QuizTrigger 请求服务端向房间推送测验
type QuizTrigger struct {
	Type    Type   `json:"type"`
	Quizzes []Quiz `json:"quizzes"`
}

func NewChatMessage(message, username string) OutboundChatMessage {
	return OutboundChatMessage{Type: TypeChatMessage, Message: message, Username: username}
}

func NewQuizResponse(quizID int, selectedAnswer, username string) QuizResponse {
	return QuizResponse{Type: TypeQuizResponse, QuizID: quizID, SelectedAnswer: selectedAnswer, Username: username}
}

func NewQuizTrigger(quizzes []Quiz) QuizTrigger {
	if quizzes == nil {
		quizzes = []Quiz{}
	}
	return QuizTrigger{Type: TypeQuiz, Quizzes: quizzes}
}
