package obsidian

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludedDirs 同步默认排除的目录名
var DefaultExcludedDirs = []string{".obsidian", ".git", ".trash", ".ai-team", ".claude", "模版", "Templates"}

// DocumentPoolExcludedDirs 文档池默认排除的目录名
var DocumentPoolExcludedDirs = []string{
	".obsidian", ".git", ".trash", ".ai-team", ".claude", ".cursor", ".smart-env", ".serena", "Templates", "模版",
}

// ScanOptions 扫描参数
type ScanOptions struct {
	// IncludeRoots 相对根目录的前缀，为空时扫描整个目录
	IncludeRoots []string
	// ExcludedDirs 排除的目录名（忽略大小写），为 nil 时使用 DefaultExcludedDirs
	ExcludedDirs []string
}

// ResolveRoot 展开 ~ 并转换为绝对路径，存在时解析符号链接
func ResolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", errors.New("empty root")
	}
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Scan 扫描根目录下的 Markdown 文件，返回去重排序后的绝对路径
// 根目录不存在时返回空结果。
func Scan(root string, opts ScanOptions) ([]string, error) {
	resolvedRoot, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(resolvedRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	excluded := buildExcludedSet(opts.ExcludedDirs)
	candidates, err := scanCandidates(resolvedRoot, opts.IncludeRoots)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, candidate := range candidates {
		candidateInfo, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if !candidateInfo.IsDir() {
			if isMarkdown(candidate) && !isExcluded(resolvedRoot, candidate, excluded) {
				seen[canonicalPath(candidate)] = struct{}{}
			}
			continue
		}
		walkErr := filepath.WalkDir(candidate, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == candidate {
					return err
				}
				return nil
			}
			if d.IsDir() {
				if path != candidate && isExcludedName(d.Name(), excluded) {
					return filepath.SkipDir
				}
				return nil
			}
			if !isMarkdown(path) || isExcluded(resolvedRoot, path, excluded) {
				return nil
			}
			seen[canonicalPath(path)] = struct{}{}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func scanCandidates(root string, includeRoots []string) ([]string, error) {
	if len(includeRoots) == 0 {
		return []string{root}, nil
	}
	candidates := make([]string, 0, len(includeRoots))
	for _, include := range includeRoots {
		include = strings.TrimSpace(include)
		if include == "" {
			continue
		}
		candidate := include
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(root, filepath.FromSlash(NormalizeRelativePath(include)))
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func buildExcludedSet(names []string) map[string]struct{} {
	if names == nil {
		names = DefaultExcludedDirs
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if trimmed := strings.ToLower(strings.TrimSpace(name)); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

func isExcludedName(name string, excluded map[string]struct{}) bool {
	_, ok := excluded[strings.ToLower(name)]
	return ok
}

func isExcluded(root, path string, excluded map[string]struct{}) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if isExcludedName(segment, excluded) {
			return true
		}
	}
	return false
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
