// Package fuzztests houses Go fuzz harnesses for the pipeline. Inputs go
// through the lexer, the parser and, when they parse, every later stage under
// each type system, so panics, hangs and broken stage contracts show up.
//
// Назначение: прогонять произвольные байты через source -> lexer -> parser ->
// check -> lower -> eval с маленькими бюджетами.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
