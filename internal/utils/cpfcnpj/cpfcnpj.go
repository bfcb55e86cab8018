package cpfcnpj

import "strings"

// Normalize оставляет в документе только цифры
func Normalize(doc string) string {
	var b strings.Builder
	for _, ch := range doc {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// Validate проверяет CPF (11 цифр) или CNPJ (14 цифр) по контрольным цифрам.
// Маска (точки, тире, слэш) допускается.
func Validate(doc string) bool {
	for _, ch := range doc {
		if (ch < '0' || ch > '9') && ch != '.' && ch != '-' && ch != '/' && ch != ' ' {
			return false
		}
	}

	digits := Normalize(doc)
	switch len(digits) {
	case 11:
		return validCPF(digits)
	case 14:
		return validCNPJ(digits)
	default:
		return false
	}
}

func validCPF(d string) bool {
	if repeated(d) {
		return false
	}
	return checkDigit(d[:9], weightsDesc(10)) == int(d[9]-'0') &&
		checkDigit(d[:10], weightsDesc(11)) == int(d[10]-'0')
}

func validCNPJ(d string) bool {
	if repeated(d) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := append([]int{6}, first...)
	return checkDigit(d[:12], first) == int(d[12]-'0') &&
		checkDigit(d[:13], second) == int(d[13]-'0')
}

// checkDigit считает контрольную цифру по модулю 11
func checkDigit(base string, weights []int) int {
	sum := 0
	for i := range base {
		sum += int(base[i]-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func weightsDesc(from int) []int {
	w := make([]int, 0, from-1)
	for i := from; i >= 2; i-- {
		w = append(w, i)
	}
	return w
}

// Последовательности из одной цифры проходят модуль 11, но невалидны
func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
