package schedule

import (
	"regexp"
	"strings"
)

// ── 时间串双语法解析 ────────────────────────────────────────
//
// 数据源里的班次时间串有两套写法：
//   紧凑语法（数据源形态）："MWF 10:00-12:00; TTh 09:00-10:15"
//     —— 星期字母连写，TH 需在 T 之前做两字符前瞻；分号分隔多段
//   自由形态（人类输入）："Mon/Wed 09:00-10:50"、"Tue,Thu 13:00-14:15"
//     —— 星期词用空白/逗号/斜杠分隔，整串只取一段时间区间
// 两套语法均解析为 Block 列表；完全解析不出则返回空列表，不视为错误。

var dayTokenIndex = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
	"u": 0, "m": 1, "t": 2, "w": 3, "th": 4, "f": 5, "s": 6,
}

// DayIndexFromToken 自由形态星期词 → 星期序号
// 接受三字母缩写与单字母缩写（u=周日、s=周六、th=周四）
func DayIndexFromToken(token string) (int, bool) {
	idx, ok := dayTokenIndex[strings.ToLower(strings.TrimSpace(token))]
	return idx, ok
}

var (
	freeFormRe     = regexp.MustCompile(`(?i)(.*)\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	dayTokenSplit  = regexp.MustCompile(`[\s,/]+`)
	compactChunkRe = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})$`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	chunkSplitRe   = regexp.MustCompile(`;+`)
)

// ParseBlocksFromSpec 解析自由形态时间串
// 整串匹配一次 "星期部分 HH:MM-HH:MM"；无法识别的星期词逐个跳过
func ParseBlocksFromSpec(spec, label, color, courseCode string) []Block {
	if spec == "" {
		return nil
	}
	m := freeFormRe.FindStringSubmatch(spec)
	if m == nil {
		return nil
	}
	dayPart, startStr, endStr := m[1], m[2], m[3]
	if strings.TrimSpace(dayPart) == "" {
		return nil
	}
	start := TimeToMinutes(startStr)
	end := TimeToMinutes(endStr)

	var out []Block
	for _, tok := range dayTokenSplit.Split(dayPart, -1) {
		if tok == "" {
			continue
		}
		idx, ok := DayIndexFromToken(tok)
		if !ok {
			continue
		}
		out = append(out, Block{
			DayIndex:     idx,
			StartMinutes: start,
			EndMinutes:   end,
			Label:        label,
			Color:        color,
			CourseCode:   courseCode,
		})
	}
	return out
}

// DecodeAPIDaysToken 解码紧凑语法的星期字母串
// TH 在 T 之前做两字符前瞻（"TTh" → 周二+周四）；未知字母跳过；
// 结果去重并按星期序号升序
func DecodeAPIDaysToken(token string) []int {
	s := strings.ToUpper(token)
	seen := [7]bool{}
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "TH") {
			seen[4] = true
			i += 2
			continue
		}
		switch s[i] {
		case 'M':
			seen[1] = true
		case 'T':
			seen[2] = true
		case 'W':
			seen[3] = true
		case 'F':
			seen[5] = true
		case 'S':
			seen[6] = true
		}
		i++
	}
	var out []int
	for idx, ok := range seen {
		if ok {
			out = append(out, idx)
		}
	}
	return out
}

// ParseBlocksFromAPISpec 解析紧凑语法时间串
// 按分号切段，每段独立匹配；匹配失败的段跳过，不影响其余段
func ParseBlocksFromAPISpec(spec, label, color, courseCode, sectionID string) []Block {
	if spec == "" {
		return nil
	}
	var out []Block
	for _, chunk := range chunkSplitRe.Split(spec, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		m := compactChunkRe.FindStringSubmatch(multiSpaceRe.ReplaceAllString(chunk, " "))
		if m == nil {
			continue
		}
		start := TimeToMinutes(m[2])
		end := TimeToMinutes(m[3])
		for _, idx := range DecodeAPIDaysToken(m[1]) {
			out = append(out, Block{
				DayIndex:     idx,
				StartMinutes: start,
				EndMinutes:   end,
				Label:        label,
				Color:        color,
				CourseCode:   courseCode,
				SectionID:    sectionID,
			})
		}
	}
	return out
}

// ParseBlocks 班次时间串的通用入口：先试紧凑语法，落空再试自由形态
func ParseBlocks(spec, label, color, courseCode, sectionID string) []Block {
	if blocks := ParseBlocksFromAPISpec(spec, label, color, courseCode, sectionID); len(blocks) > 0 {
		return blocks
	}
	return ParseBlocksFromSpec(spec, label, color, courseCode)
}
