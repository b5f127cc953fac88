// Package highlight computes the display-time partition of a note into the
// part that was already present in the previous snapshot and the part that
// was appended since. It is pure and display-only: it never mutates records.
//
// Package highlight 计算笔记展示时的分段：上一个快照中已存在的部分，
// 以及此后追加的部分。纯函数，仅用于展示，绝不修改记录。
package highlight

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result 高亮分段结果
type Result struct {
	// UnchangedPrefix 快照中已有的前缀部分，不需要高亮
	UnchangedPrefix string
	// ChangedSuffix 自快照以来追加的部分，需要视觉强调；为空表示无高亮
	ChangedSuffix string
}

// Highlight partitions current into an unchanged prefix and an appended
// suffix relative to previous. Rules, in priority order:
//
//  1. previous absent, or equal to current after trimming: no highlight.
//  2. current (trimmed) starts with previous (trimmed): the remainder is
//     the highlighted suffix.
//  3. line-by-line (trimmed per line): if every line of the shorter side
//     matches and current has additional trailing lines, those trailing
//     lines are the highlighted suffix.
//  4. otherwise the edits diverged and no "new part" can be identified
//     reliably; return the whole content unchanged. Never highlight text
//     that was not demonstrably added.
//
// Highlight 将 current 相对 previous 分为未变前缀和追加后缀。
// 规则按优先级：相等或无快照不高亮；字面前缀匹配高亮剩余部分；
// 逐行比较只高亮末尾新增行；发散编辑一律不高亮。
func Highlight(previous, current string) Result {
	curTrim := strings.TrimSpace(current)
	prevTrim := strings.TrimSpace(previous)

	// 规则 1: 无快照或内容未变
	if prevTrim == "" || prevTrim == curTrim {
		return Result{UnchangedPrefix: curTrim}
	}

	// 规则 2: 字面前缀匹配
	if strings.HasPrefix(curTrim, prevTrim) {
		return Result{
			UnchangedPrefix: prevTrim,
			ChangedSuffix:   strings.TrimSpace(curTrim[len(prevTrim):]),
		}
	}

	// 规则 3: 逐行比较，仅识别末尾新增行
	prevLines := strings.Split(prevTrim, "\n")
	curLines := strings.Split(curTrim, "\n")

	shorter := len(prevLines)
	if len(curLines) < shorter {
		shorter = len(curLines)
	}
	for i := 0; i < shorter; i++ {
		if strings.TrimSpace(prevLines[i]) != strings.TrimSpace(curLines[i]) {
			// 中途出现差异，无法可靠识别新增部分
			return Result{UnchangedPrefix: curTrim}
		}
	}
	if len(curLines) > len(prevLines) {
		return Result{
			UnchangedPrefix: strings.Join(curLines[:len(prevLines)], "\n"),
			ChangedSuffix:   strings.TrimSpace(strings.Join(curLines[len(prevLines):], "\n")),
		}
	}

	// 规则 4: 行数未增加（纯删除或同行改写），保守回退
	return Result{UnchangedPrefix: curTrim}
}

// Segments returns full inline diff segments between previous and current for
// UIs that render richer views than the prefix/suffix split. Display-only.
//
// Segments 返回 previous 与 current 之间的完整行内 diff 分段，
// 供需要完整对比视图的界面使用。仅用于展示。
func Segments(previous, current string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previous, current, false)
	return dmp.DiffCleanupSemantic(diffs)
}
