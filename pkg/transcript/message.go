package transcript

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Placeholder is the bot message opened when a command is submitted
const Placeholder = "Starting..."

type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

func NewUserMessage(text string) Message {
	return Message{
		Text:   text,
		Sender: SenderUser,
	}
}

func NewBotMessage(text string) Message {
	return Message{
		Text:   text,
		Sender: SenderBot,
	}
}

func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// CopyMessages returns a copy that shares nothing with messages
func CopyMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	result := make([]Message, len(messages))
	copy(result, messages)
	return result
}

// LastTurn returns the most recent user message and every message after it.
// It returns nil when the transcript holds no user message.
func LastTurn(messages []Message) []Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsUser() {
			return CopyMessages(messages[i:])
		}
	}
	return nil
}
