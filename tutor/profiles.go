package tutor

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BaSui01/studyflow/llm"

	"gopkg.in/yaml.v3"
)

// AgentID Agent 标识，统一为大写
type AgentID string

// 内置 Agent
const (
	AgentSpeed    AgentID = "SPEED"
	AgentSocratic AgentID = "SOCRATIC"
	AgentPerfect  AgentID = "PERFECT"
	AgentCoach    AgentID = "COACH"
)

// ParseAgentID 去空白并转大写
func ParseAgentID(s string) AgentID {
	return AgentID(strings.ToUpper(strings.TrimSpace(s)))
}

// AgentProfile Agent 配置：指令模板与响应格式提示
type AgentProfile struct {
	ID             AgentID            `yaml:"id" json:"id"`
	Name           string             `yaml:"name" json:"name"`
	Instruction    string             `yaml:"instruction" json:"instruction"`
	ResponseFormat llm.ResponseFormat `yaml:"response_format" json:"response_format"`
}

type profilesFile struct {
	Agents []AgentProfile `yaml:"agents"`
}

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// Registry 不可变的 Agent 配置表，构建后只读，可并发访问
type Registry struct {
	profiles map[AgentID]AgentProfile
	order    []AgentID
}

// NewRegistry 校验并构建配置表
func NewRegistry(profiles []AgentProfile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("agent registry is empty")
	}

	r := &Registry{profiles: make(map[AgentID]AgentProfile, len(profiles))}
	for i, p := range profiles {
		p.ID = ParseAgentID(string(p.ID))
		if p.ID == "" {
			return nil, fmt.Errorf("agent #%d: id is required", i)
		}
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("agent %s: duplicate id", p.ID)
		}
		p.Instruction = strings.TrimSpace(p.Instruction)
		if p.Instruction == "" {
			return nil, fmt.Errorf("agent %s: instruction is required", p.ID)
		}
		if p.ResponseFormat == "" {
			p.ResponseFormat = llm.ResponseFormatText
		}
		if !p.ResponseFormat.Valid() {
			return nil, fmt.Errorf("agent %s: unsupported response format %q", p.ID, p.ResponseFormat)
		}
		r.profiles[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r, nil
}

// ParseRegistry 从 YAML 解析配置表
func ParseRegistry(data []byte) (*Registry, error) {
	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse agent profiles: %w", err)
	}
	return NewRegistry(f.Agents)
}

// LoadRegistry 从文件加载配置表
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent profiles: %w", err)
	}
	return ParseRegistry(data)
}

// DefaultRegistry 内置配置表
func DefaultRegistry() *Registry {
	r, err := ParseRegistry(defaultProfilesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded agent profiles are invalid: %v", err))
	}
	return r
}

// Lookup 按 ID 查找
func (r *Registry) Lookup(id AgentID) (AgentProfile, bool) {
	p, ok := r.profiles[ParseAgentID(string(id))]
	return p, ok
}

// List 按 ID 排序返回全部配置
func (r *Registry) List() []AgentProfile {
	out := make([]AgentProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Len 配置数量
func (r *Registry) Len() int {
	return len(r.profiles)
}
