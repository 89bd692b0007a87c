package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "array" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if msg == "" {
		return code
	}
	if v, ok := data["detail"]; ok && v != "" {
		return msg + ": " + v
	}
	return msg
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_schema":
			return "スキーマが不正です"
		case "invalid_dtype":
			return "データ型が不正です"
		case "invalid_name":
			return "名前が識別子ではありません"
		case "self_reference":
			return "型がポインタを経由せずに自身を参照しています"
		case "out_of_range":
			return "範囲外です"
		case "missing_attribute":
			return "属性がありません"
		case "missing_array":
			return "配列がありません"
		case "dtype_mismatch":
			return "配列のデータ型が一致しません"
		case "absent_value":
			return "値が必要な位置で値がありません"
		case "not_implemented":
			return "未実装です"
		case "capability_misuse":
			return "この型はその配列を提供できません"
		case "backend_invariant":
			return "バックエンドの不変条件違反"
		}
	default: // "en"
		switch code {
		case "invalid_schema":
			return "invalid schema"
		case "invalid_dtype":
			return "invalid dtype"
		case "invalid_name":
			return "name is not an identifier"
		case "self_reference":
			return "type is defined in terms of itself without a pointer"
		case "out_of_range":
			return "index out of range"
		case "missing_attribute":
			return "no such attribute"
		case "missing_array":
			return "array not found"
		case "dtype_mismatch":
			return "array dtype does not match the schema"
		case "absent_value":
			return "absent value where a value is required"
		case "not_implemented":
			return "not implemented"
		case "capability_misuse":
			return "attribute not provided by this kind"
		case "backend_invariant":
			return "backend invariant violated"
		}
	}
	return ""
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
