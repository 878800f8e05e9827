package errors

import "errors"

// ErrStatusConflict 楽観的な状態遷移の競合。対象レコードが既に別の操作で
// 遷移済みの場合に Repository 層が返す
var ErrStatusConflict = errors.New("データが他の操作で変更されています。再読み込みしてください")
