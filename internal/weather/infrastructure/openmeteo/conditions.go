package openmeteo

// conditions maps WMO weather interpretation codes to display text.
var conditions = map[int]string{
	0:  "Ясно",
	1:  "Преимущественно ясно",
	2:  "Переменная облачность",
	3:  "Облачно",
	45: "Туман",
	48: "Изморозь",
	51: "Лёгкая морось",
	53: "Морось",
	55: "Сильная морось",
	56: "Ледяная морось",
	57: "Сильная ледяная морось",
	61: "Небольшой дождь",
	63: "Дождь",
	65: "Сильный дождь",
	66: "Ледяной дождь",
	67: "Сильный ледяной дождь",
	71: "Небольшой снег",
	73: "Снег",
	75: "Сильный снег",
	77: "Снежные зёрна",
	80: "Небольшой ливень",
	81: "Ливень",
	82: "Сильный ливень",
	85: "Снегопад",
	86: "Сильный снегопад",
	95: "Гроза",
	96: "Гроза с градом",
	99: "Сильная гроза с градом",
}

// Condition returns the display text for a WMO code.
func Condition(code int) string {
	if text, ok := conditions[code]; ok {
		return text
	}
	return "Неизвестно"
}
