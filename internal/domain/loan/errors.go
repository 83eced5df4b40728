package loan

import "errors"

// ErrLoanNotFound は貸出が存在しないことを表す
var ErrLoanNotFound = errors.New("貸出が見つかりません")
