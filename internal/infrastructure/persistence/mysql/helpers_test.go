package mysql

import "errors"

// errAny 種類を問わずエラーを期待する
var errAny = errors.New("any error")
