package llm

import "strings"

// MIMETypeJPEG 内联图片的声明类型。
const MIMETypeJPEG = "image/jpeg"

// StripDataURIPrefix 去掉 "data:...;base64," 一类前缀，返回逗号之后的部分。
// 没有逗号时原样返回；不校验 base64 合法性。
func StripDataURIPrefix(image string) string {
	if _, data, found := strings.Cut(image, ","); found {
		return data
	}
	return image
}

// HasImage 判断图片参数是否存在（非空白）。
func HasImage(image string) bool {
	return strings.TrimSpace(image) != ""
}
