package domain

// Result значение или ошибка загрузки.
// Вызывающий код сам выбирает политику: OrEmpty для дашборда, Unwrap для строгого пути.
type Result[T any] struct {
	value T
	err   error
}

// Ok успешный результат
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail неуспешный результат
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Unwrap возвращает значение и ошибку
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// OrEmpty возвращает значение или нулевое значение типа при ошибке
func (r Result[T]) OrEmpty() T {
	if r.err != nil {
		var zero T
		return zero
	}
	return r.value
}

// Err ошибка загрузки
func (r Result[T]) Err() error {
	return r.err
}
