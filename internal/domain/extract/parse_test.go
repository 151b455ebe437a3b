package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{in: "2025年05月31日", want: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{in: "募集終了日 : 2025/4/1 必着", want: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{in: "２０２５年１２月１日", want: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{in: "2025年05月", wantOK: false},
		{in: "N/A", wantOK: false},
		{in: "", wantOK: false},
		{in: "2025年02月30日", wantOK: false},
		{in: "2025年13月01日", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsActiveBoundary(t *testing.T) {
	now := time.Date(2025, 5, 31, 23, 59, 0, 0, time.Local)

	assert.True(t, IsActive("2025年05月31日", now), "deadline today is active")
	assert.False(t, IsActive("2025年05月30日", now), "deadline yesterday is inactive")
	assert.True(t, IsActive("2025年06月01日", now))
	assert.True(t, IsActive("N/A", now), "unparseable deadline defaults to active")
	assert.True(t, IsActive("", now))
}

func TestParseCompound(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want compound
	}{
		{
			name: "full",
			in:   "教授 : 常勤 - 任期あり - 試用期間なし",
			want: compound{PositionType: "教授", EmploymentType: "常勤", TenureStatus: "任期あり", TrialPeriod: "試用期間なし"},
		},
		{
			name: "tenure track only",
			in:   "助教：常勤（テニュアトラック）",
			want: compound{PositionType: "助教", EmploymentType: "常勤（テニュアトラック）", TenureStatus: "テニュアトラック"},
		},
		{
			name: "markers in any order",
			in:   "講師 : 非常勤 - 試用期間あり - 任期なし",
			want: compound{PositionType: "講師", EmploymentType: "非常勤", TenureStatus: "任期なし", TrialPeriod: "試用期間あり"},
		},
		{
			name: "no delimiter",
			in:   "教授 常勤",
			want: compound{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCompound(tt.in))
		})
	}
}

func TestTeachingRequirements(t *testing.T) {
	assert.Equal(t, "担当科目：経済原論", teachingRequirements("研究と教育。担当科目：経済原論"))
	assert.Equal(t, "授業：週4コマ程度", teachingRequirements("授業：週4コマ程度"))
	assert.Equal(t, "教育負担:年間8科目", teachingRequirements("教育負担:年間8科目"))
	assert.Empty(t, teachingRequirements("研究に専念"))
}
