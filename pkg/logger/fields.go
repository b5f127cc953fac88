package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldEntityType 实体类型字段
	FieldEntityType = "entityType"

	// FieldEntityID 实体 ID 字段
	FieldEntityID = "entityId"

	// FieldSyncID 单次远端同步的追踪 ID 字段
	FieldSyncID = "syncId"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldTask 任务名称字段
	FieldTask = "task"

	// FieldEndpoint 远端接口地址字段
	FieldEndpoint = "endpoint"

	// FieldStatus HTTP 状态码字段
	FieldStatus = "status"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldError 错误信息字段
	FieldError = "error"
)
