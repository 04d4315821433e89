package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeloticZ/CourseX/internal/catalog"
)

// ── 数据集加载 ──────────────────────────────────────────────
//
// 数据集按学期分目录存放：
//   <data_dir>/<term_id>/courses.json   嵌套的学院→专业→课程组数据
//   <data_dir>/<term_id>/programs.json  专业目录（原样透传，不解析）
// 爬虫离线产出这些文件，服务端只读。

// ErrTermNotFound 学期数据目录或文件不存在
// 与加载失败（IO/解码错误）区分：前者是调用方传错学期号的硬错误
var ErrTermNotFound = errors.New("学期数据不存在")

// Loader 数据集加载接口
type Loader interface {
	// LoadCourses 加载指定学期的原始课程数据
	LoadCourses(termID string) (catalog.RawCoursesBySchool, error)
	// LoadPrograms 加载指定学期的专业目录（原始 JSON 原样返回）
	LoadPrograms(termID string) (json.RawMessage, error)
	// ListTerms 列出数据目录下的全部学期号（升序）
	ListTerms() ([]string, error)
}

// FileLoader 基于本地文件系统的数据集加载器
type FileLoader struct {
	dir string
}

// NewFileLoader 创建文件数据集加载器，dir 为数据根目录
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// termPath 学期文件路径；学期号做基本清洗防止路径穿越
func (l *FileLoader) termPath(termID, file string) (string, error) {
	term := strings.TrimSpace(termID)
	if term == "" || strings.ContainsAny(term, `/\.`) {
		return "", ErrTermNotFound
	}
	return filepath.Join(l.dir, term, file), nil
}

func (l *FileLoader) readTermFile(termID, file string) ([]byte, error) {
	path, err := l.termPath(termID, file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTermNotFound, termID)
		}
		return nil, fmt.Errorf("读取数据文件失败 %s: %w", path, err)
	}
	return data, nil
}

// LoadCourses 加载并解码学期课程数据
func (l *FileLoader) LoadCourses(termID string) (catalog.RawCoursesBySchool, error) {
	data, err := l.readTermFile(termID, "courses.json")
	if err != nil {
		return nil, err
	}
	var raw catalog.RawCoursesBySchool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解码课程数据失败 %s: %w", termID, err)
	}
	return raw, nil
}

// LoadPrograms 加载学期专业目录，不做结构校验
func (l *FileLoader) LoadPrograms(termID string) (json.RawMessage, error) {
	data, err := l.readTermFile(termID, "programs.json")
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("专业目录不是合法 JSON: %s", termID)
	}
	return json.RawMessage(data), nil
}

// ListTerms 枚举数据根目录下含 courses.json 的学期目录
func (l *FileLoader) ListTerms() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("读取数据目录失败 %s: %w", l.dir, err)
	}
	var terms []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.dir, e.Name(), "courses.json")); err == nil {
			terms = append(terms, e.Name())
		}
	}
	sort.Strings(terms)
	return terms, nil
}
