package transform

// ean13CheckDigit вычисляет контрольную цифру EAN-13 по первым 12 цифрам:
// взвешенная сумма с чередующимися весами 1 и 3, контрольная цифра —
// (10 - sum mod 10) mod 10.
func ean13CheckDigit(body string) int {
	sum := 0
	for i, c := range body {
		digit := int(c - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}

	return ((10 - sum%10) % 10) % 10
}

// ean13WithChecksum дополняет 12-значное тело кода контрольной цифрой.
func ean13WithChecksum(body string) string {
	return body + string(rune('0'+ean13CheckDigit(body)))
}

// ean14ToEAN13 конвертирует EAN-14 в EAN-13: отбрасывается первая цифра
// (уровень упаковки) и последняя (контрольная цифра EAN-14), после чего
// контрольная цифра EAN-13 вычисляется заново.
func ean14ToEAN13(code string) string {
	return ean13WithChecksum(code[1 : len(code)-1])
}

// digitsOnly сообщает, состоит ли строка только из цифр.
func digitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
