package job

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Profile is the candidate profile produced by the external resume-extraction
// step. Only the fields the scorer needs are decoded.
type Profile struct {
	Skills       []string     `json:"skills"`
	Experience   []Experience `json:"experience"`
	PersonalInfo PersonalInfo `json:"personal_info"`
}

type Experience struct {
	Title string `json:"title"`
}

type PersonalInfo struct {
	Name string `json:"name"`
}

// LoadProfile reads a candidate profile from a JSON file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile %q: %w", path, err)
	}

	return &profile, nil
}

// Name returns the candidate name, or a placeholder when absent.
func (p *Profile) Name() string {
	if name := strings.TrimSpace(p.PersonalInfo.Name); name != "" {
		return name
	}
	return "Candidate"
}

// ExperienceSummary joins prior role titles for prompt embedding.
func (p *Profile) ExperienceSummary() string {
	titles := make([]string, 0, len(p.Experience))
	for _, exp := range p.Experience {
		if title := strings.TrimSpace(exp.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return strings.Join(titles, "; ")
}

// SkillList joins the skill names for prompt embedding.
func (p *Profile) SkillList() string {
	return strings.Join(p.Skills, ", ")
}
