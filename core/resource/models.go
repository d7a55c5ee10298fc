package resource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

type Type string

const (
	TypeTextbook    Type = "textbook"
	TypeVideo       Type = "video"
	TypeWorksheet   Type = "worksheet"
	TypeInteractive Type = "interactive"
)

var Types = []Type{TypeTextbook, TypeVideo, TypeWorksheet, TypeInteractive}

// GradeRange is the inclusive range of grades a resource is meant for. Rendered as "4" or "3-5".
type GradeRange struct {
	Min int
	Max int
}

// ParseGradeRange parses "4" or "3-5".
func ParseGradeRange(s string) (GradeRange, error) {
	s = core.CleanString(s)
	lo, hi := s, s
	if i := strings.IndexByte(s, '-'); i >= 0 {
		lo, hi = s[:i], s[i+1:]
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return GradeRange{}, errors.Errorf("invalid grade range %q", s)
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return GradeRange{}, errors.Errorf("invalid grade range %q", s)
	}
	if min < 1 || max < min {
		return GradeRange{}, errors.Errorf("invalid grade range %q", s)
	}
	return GradeRange{Min: min, Max: max}, nil
}

func (gr GradeRange) Contains(grade int) bool {
	return grade >= gr.Min && grade <= gr.Max
}

func (gr GradeRange) String() string {
	if gr.Min == gr.Max {
		return strconv.Itoa(gr.Min)
	}
	return fmt.Sprintf("%d-%d", gr.Min, gr.Max)
}

func (gr GradeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(gr.String())
}

// Resource is a teaching resource of the shared catalogue.
type Resource struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Type             Type       `json:"type"`
	Subject          string     `json:"subject"`
	Grade            GradeRange `json:"grade"`
	Description      string     `json:"description"`
	FilePath         string     `json:"filePath"`
	FileSize         int64      `json:"fileSize"` // bytes
	OfflineAvailable bool       `json:"offlineAvailable"`
	DownloadCount    int        `json:"downloadCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// QueryFilter restricts a resources query; zero fields match everything.
type QueryFilter struct {
	Subject string `query:"subject"`
	Grade   int    `query:"grade"`
	Type    Type   `query:"type"`
}

func (qf *QueryFilter) Clean() {
	qf.Subject = core.CleanString(qf.Subject, true /* lower */)
	qf.Type = Type(core.CleanString(string(qf.Type), true /* lower */))
}

func (qf QueryFilter) Match(r Resource) bool {
	if qf.Subject != "" && r.Subject != qf.Subject {
		return false
	}
	if qf.Grade != 0 && !r.Grade.Contains(qf.Grade) {
		return false
	}
	if qf.Type != "" && r.Type != qf.Type {
		return false
	}
	return true
}
