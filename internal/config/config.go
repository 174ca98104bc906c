package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/fachebot/study-room-client/internal/wire"

	"gopkg.in/yaml.v3"
)

// DefaultQuizOffsetMinutes 房间开始后多久推送测验
const DefaultQuizOffsetMinutes = 20

type Sock5Proxy struct {
	Host   string `yaml:"Host"`
	Port   int32  `yaml:"Port"`
	Enable bool   `yaml:"Enable"`
}

// Page 宿主页面信息，决定连接地址的协议与主机
type Page struct {
	URL string `yaml:"URL"` // 如 https://study.example.com/room/12/
}

type Room struct {
	Id                string `yaml:"Id"`
	Date              string `yaml:"Date"` // 2006-01-02
	Time              string `yaml:"Time"` // 15:04 或 15:04:05
	Username          string `yaml:"Username"`
	QuizSession       bool   `yaml:"QuizSession"`
	QuizOffsetMinutes *int   `yaml:"QuizOffsetMinutes"` // 未配置时为 20，0 表示房间开始时立即推送
}

// QuizOffset 房间开始到推送测验的间隔
func (r Room) QuizOffset() time.Duration {
	if r.QuizOffsetMinutes == nil {
		return DefaultQuizOffsetMinutes * time.Minute
	}
	return time.Duration(*r.QuizOffsetMinutes) * time.Minute
}

type OfflineCache struct {
	Enable      bool     `yaml:"Enable"`
	Name        string   `yaml:"Name"`        // 当前缓存名，如 room-client-v1
	Allow       []string `yaml:"Allow"`       // 激活时保留的缓存名，为空时只保留 Name
	Assets      []string `yaml:"Assets"`      // 安装时预缓存的关键资源
	OfflinePage string   `yaml:"OfflinePage"` // 网络不可用时的兜底页面
	Database    string   `yaml:"Database"`    // sqlite 文件路径
}

type Config struct {
	Sock5Proxy   Sock5Proxy   `yaml:"Sock5Proxy"`
	Page         Page         `yaml:"Page"`
	Room         Room         `yaml:"Room"`
	Quizzes      []wire.Quiz  `yaml:"Quizzes"`
	OfflineCache OfflineCache `yaml:"OfflineCache"`
	Verbose      bool         `yaml:"Verbose"`
}

func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse 解析并校验 YAML 配置
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Room.QuizOffsetMinutes == nil {
		offset := DefaultQuizOffsetMinutes
		c.Room.QuizOffsetMinutes = &offset
	}
	if c.OfflineCache.Database == "" {
		c.OfflineCache.Database = "data/offline.db"
	}
	if c.OfflineCache.Enable && len(c.OfflineCache.Allow) == 0 {
		c.OfflineCache.Allow = []string{c.OfflineCache.Name}
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	// 验证 Page
	if c.Page.URL == "" {
		return fmt.Errorf("Page.URL 不能为空")
	}
	u, err := url.Parse(c.Page.URL)
	if err != nil {
		return fmt.Errorf("Page.URL 无效: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("Page.URL 协议必须是 http 或 https")
	}
	if u.Host == "" {
		return fmt.Errorf("Page.URL 缺少主机")
	}

	// 验证 Room
	if c.Room.Id == "" {
		return fmt.Errorf("Room.Id 不能为空")
	}
	if c.Room.Username == "" {
		return fmt.Errorf("Room.Username 不能为空")
	}
	if c.Room.Date == "" || c.Room.Time == "" {
		return fmt.Errorf("Room.Date 和 Room.Time 不能为空")
	}
	if c.Room.QuizOffsetMinutes != nil && *c.Room.QuizOffsetMinutes < 0 {
		return fmt.Errorf("Room.QuizOffsetMinutes 必须 >= 0")
	}

	// 验证 Quizzes
	seen := make(map[int]bool, len(c.Quizzes))
	for _, q := range c.Quizzes {
		if seen[q.ID] {
			return fmt.Errorf("Quizzes 中存在重复的 Id: %d", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			return fmt.Errorf("Quizzes[%d].Options 不能为空", q.ID)
		}
	}

	// 验证 Sock5Proxy
	if c.Sock5Proxy.Enable && (c.Sock5Proxy.Host == "" || c.Sock5Proxy.Port <= 0) {
		return fmt.Errorf("Sock5Proxy.Host 和 Sock5Proxy.Port 不能为空（当 Enable 为 true 时）")
	}

	// 验证 OfflineCache
	if c.OfflineCache.Enable {
		if c.OfflineCache.Name == "" {
			return fmt.Errorf("OfflineCache.Name 不能为空")
		}
		if c.OfflineCache.OfflinePage == "" {
			return fmt.Errorf("OfflineCache.OfflinePage 不能为空")
		}
	}

	return nil
}
