// Package fixtures 提供测试用的样例请求与图片数据。
package fixtures

// TinyJPEGBase64 1x1 JPEG 的 base64 编码
const TinyJPEGBase64 = "/9j/4AAQSkZJRgABAQEASABIAAD/2wBDAP//////////////////////////////////////////////////////////////////////////////////////wgALCAABAAEBAREA/8QAFBABAAAAAAAAAAAAAAAAAAAAAP/aAAgBAQABPxA="

// TinyJPEGDataURI 带 data URI 前缀的同一张图
const TinyJPEGDataURI = "data:image/jpeg;base64," + TinyJPEGBase64

// Task 样例任务
type Task struct {
	Subject string
	Agent   string
	Input   string
	Image   string
}

// MathTask 纯文本数学题
func MathTask() Task {
	return Task{Subject: "math", Agent: "SPEED", Input: "Solve 2x + 3 = 7"}
}

// PhysicsImageTask 带图的物理题
func PhysicsImageTask() Task {
	return Task{Subject: "physics", Agent: "PERFECT", Input: "Explain the diagram", Image: TinyJPEGDataURI}
}
