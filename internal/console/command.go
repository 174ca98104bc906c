package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Kind int

const (
	KindSend Kind = iota
	KindPick
	KindMark
	KindSubmit
	KindAsset
	KindHelp
	KindQuit
)

// Command 终端输入解析后的命令
type Command struct {
	Kind   Kind
	Text   string
	QuizID int
	Key    string
	Path   string
}

const Usage = `commands:
  <text>            send a chat message
  /pick <id> <key>  answer a quiz from the quiz panel
  /mark <id> <key>  select an answer in the quiz form
  /submit           submit the quiz form
  /asset <path>     fetch a page asset through the offline cache
  /help             show this help
  /quit             leave the room`

// ParseCommand 解析一行输入；不以 / 开头的内容原样作为聊天消息，以 // 开头的发送时去掉一个 /
func ParseCommand(line string) (Command, error) {
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: KindSend, Text: line}, nil
	}
	if strings.HasPrefix(line, "//") {
		return Command{Kind: KindSend, Text: line[1:]}, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/pick", "/mark":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("用法: %s <id> <key>", fields[0])
		}
		quizID, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("无效的题目编号: %s", fields[1])
		}
		kind := KindPick
		if fields[0] == "/mark" {
			kind = KindMark
		}
		return Command{Kind: kind, QuizID: quizID, Key: fields[2]}, nil
	case "/submit":
		return Command{Kind: KindSubmit}, nil
	case "/asset":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("用法: /asset <path>")
		}
		return Command{Kind: KindAsset, Path: fields[1]}, nil
	case "/help":
		return Command{Kind: KindHelp}, nil
	case "/quit", "/exit":
		return Command{Kind: KindQuit}, nil
	default:
		return Command{}, fmt.Errorf("未知命令: %s", fields[0])
	}
}

// ReadCommands 逐行读取输入并回调，直到输入结束或 ctx 取消
// 解析失败的行写到 errOut 后继续
func ReadCommands(ctx context.Context, in io.Reader, errOut io.Writer, fn func(Command)) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd, err := ParseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		fn(cmd)
		if cmd.Kind == KindQuit {
			return nil
		}
	}
	return scanner.Err()
}
