package domain

// DirectoryEntry 实体目录中的一条展示信息
type DirectoryEntry struct {
	// DisplayName 人类可读名称
	DisplayName string
	// NavPath 前端导航目标
	NavPath string
}

// Directory resolves entity ids to display information. Directories are
// supplied by the calling view (landlord directory, property directory,
// applicant directory, vendor directory); records whose entity cannot be
// resolved are treated as orphaned.
//
// Directory 将实体 ID 解析为展示信息。目录由调用方视图提供，
// 无法解析的记录视为孤儿记录。
type Directory interface {
	// Lookup 按实体 ID 查找展示信息
	Lookup(entityID string) (DirectoryEntry, bool)
}

// DirectorySet 按实体类型组织的目录集合
type DirectorySet map[EntityType]Directory

// Resolve 在集合中解析一条记录的展示信息
func (s DirectorySet) Resolve(entityType EntityType, entityID string) (DirectoryEntry, bool) {
	dir, ok := s[entityType]
	if !ok {
		return DirectoryEntry{}, false
	}
	return dir.Lookup(entityID)
}

// StaticDirectory 基于内存映射的目录实现，供调用方和测试使用
type StaticDirectory map[string]DirectoryEntry

// Lookup 实现 Directory 接口
func (d StaticDirectory) Lookup(entityID string) (DirectoryEntry, bool) {
	e, ok := d[entityID]
	return e, ok
}
