package code

// 笔记引擎错误码定义
// 10xxx 数据层 20xxx 业务层 30xxx 远端同步
var (
	// ErrorDBQuery 数据库查询失败
	ErrorDBQuery = NewError(10001, "数据库查询失败 database query failed")
	// ErrorLocalSave 本地持久化失败，必须上抛给编辑界面
	ErrorLocalSave = NewError(10002, "本地保存失败 local save failed")
	// ErrorStaleWrite 写入的时间戳早于已存储记录
	ErrorStaleWrite = NewError(10003, "写入时间戳过期 stale write rejected")

	// ErrorNoteNotFound 笔记记录不存在
	ErrorNoteNotFound = NewError(20001, "笔记不存在 note record not found")
	// ErrorInvalidEntityType 实体类型非法
	ErrorInvalidEntityType = NewError(20002, "实体类型非法 invalid entity type")
	// ErrorInvalidEntityID 实体 ID 为空
	ErrorInvalidEntityID = NewError(20003, "实体 ID 非法 invalid entity id")

	// ErrorRemoteGone 远端实体已不存在（404，终态，不再重试）
	ErrorRemoteGone = NewError(30001, "远端实体不存在 remote entity gone")
	// ErrorRemoteSync 远端同步失败（仅记录，不回滚本地保存）
	ErrorRemoteSync = NewError(30002, "远端同步失败 remote sync failed")
)
