package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrMissingType = errors.New("消息缺少 type 字段")

// Envelope 入站消息外壳，Raw 保留完整帧以便按类型二次解析
type Envelope struct {
	Type Type
	Raw  json.RawMessage
}

// DecodeEnvelope 解析原始帧的 type 字段
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解析消息失败: %w", err)
	}
	if head.Type == "" {
		return nil, ErrMissingType
	}

	return &Envelope{
		Type: head.Type,
		Raw:  append(json.RawMessage(nil), raw...),
	}, nil
}

// Decode 将完整帧解析为具体的消息结构
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return fmt.Errorf("解析 %s 消息失败: %w", e.Type, err)
	}
	return nil
}

// Encode 序列化出站消息
func Encode(event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("序列化消息失败: %w", err)
	}
	return data, nil
}

// Option 选项键与显示文本
type Option struct {
	Key   string
	Label string
}

// Options 保持对象原始顺序的选项表
type Options []Option

// Label 查找选项文本
func (o Options) Label(key string) (string, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Label, true
		}
	}
	return "", false
}

func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.Key)
		if err != nil {
			return nil, err
		}
		label, err := json.Marshal(opt.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(label)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options 必须是 JSON 对象")
	}

	opts := make(Options, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		opts = append(opts, Option{Key: key, Label: labelText(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = opts
	return nil
}

func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("第 %d 行: Options 必须是映射", value.Line)
	}

	opts := make(Options, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		opts = append(opts, Option{
			Key:   value.Content[i].Value,
			Label: value.Content[i+1].Value,
		})
	}
	*o = opts
	return nil
}

// labelText 非字符串的选项值按原始 JSON 文本显示
func labelText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// RankingEntry 排行榜条目，线上格式为 [name, score]
type RankingEntry struct {
	Name  string
	Score float64
}

// ScoreText 分数的显示文本，整数不带小数点
func (r RankingEntry) ScoreText() string {
	return strconv.FormatFloat(r.Score, 'f', -1, 64)
}

func (r RankingEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Name, r.Score})
}

func (r *RankingEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("排行榜条目必须是数组: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("排行榜条目长度应为 2，实际为 %d", len(pair))
	}

	r.Name = labelText(pair[0])

	var score float64
	if err := json.Unmarshal(pair[1], &score); err != nil {
		var text string
		if json.Unmarshal(pair[1], &text) != nil {
			return fmt.Errorf("无效的分数: %s", pair[1])
		}
		score, err = strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("无效的分数: %w", err)
		}
	}
	r.Score = score
	return nil
}
