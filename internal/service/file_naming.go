package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"velodrive/internal/domain"
)

// Счетчик вида (n) непосредственно перед последним расширением
var nameCounterPattern = regexp.MustCompile(`\((\d+)\)\.\w+$`)

// GenerateUniqueFilename увеличивает счетчик перед расширением:
// photo.png -> photo(1).png -> photo(2).png. Если счетчика нет,
// (1) вставляется перед расширением.
func GenerateUniqueFilename(name string) string {
	if m := nameCounterPattern.FindStringSubmatchIndex(name); m != nil {
		n, _ := strconv.Atoi(name[m[2]:m[3]])
		return name[:m[2]] + strconv.Itoa(n+1) + name[m[3]:]
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i] + "(1)" + name[i:]
	}
	return name + "(1)"
}

// ExtractExtension достает расширение из имени файла.
// Имя без расширения на загрузке не принимается.
func ExtractExtension(name string) (string, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return "", fmt.Errorf("%w: file name must include an extension", domain.ErrBadRequest)
	}
	return name[i+1:], nil
}

// hasDotSuffix сообщает, несет ли имя суффикс после точки. При
// переименовании расширением управляет система, поэтому отклоняется
// любой такой суффикс, а не только известные расширения.
func hasDotSuffix(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && i < len(name)-1
}
