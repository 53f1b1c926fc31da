// Package split содержит чистые функции расчёта долей участников расхода.
//
// Суммы целочисленные (минимальные денежные единицы). Равная доля считается
// целочисленным делением с округлением вниз, остаток не перераспределяется:
// сумма долей может быть меньше общей суммы расхода.
package split

import "errors"

// ErrDivisionByZero возвращается при попытке разделить сумму на ноль участников.
var ErrDivisionByZero = errors.New("split: participant count is zero")

// EqualShare возвращает равную долю одного участника: floor(total / count).
func EqualShare(total int64, count int) (int64, error) {
	if count == 0 {
		return 0, ErrDivisionByZero
	}
	n := int64(count)
	share := total / n
	// Go усекает к нулю, для отрицательных сумм приводим к округлению вниз.
	if total%n != 0 && (total < 0) != (n < 0) {
		share--
	}
	return share, nil
}

// Remainder возвращает сумму, которая теряется при равном делении.
func Remainder(total int64, count int) (int64, error) {
	share, err := EqualShare(total, count)
	if err != nil {
		return 0, err
	}
	return total - share*int64(count), nil
}
