package bot

// User-facing texts keyed by language. The funnel pushes every screen
// itself, so each entry is a full window, HTML-formatted.

var menuLabels = map[string]map[string]string{
	"ru": {
		"instruction":     "📘 Инструкция",
		"support":         "🆘 Поддержка",
		"change_language": "🌐 Сменить язык",
		"get_signal":      "📈 Получить сигнал",
		"back_to_menu":    "⬅️ Вернуться в меню",
		"subscribe":       "📡 Подписаться",
		"register":        "📝 Зарегистрироваться",
		"make_deposit":    "💰 Сделать депозит",
	},
	"en": {
		"instruction":     "📘 Instruction",
		"support":         "🆘 Support",
		"change_language": "🌐 Change language",
		"get_signal":      "📈 Get signal",
		"back_to_menu":    "⬅️ Back to menu",
		"subscribe":       "📡 Subscribe",
		"register":        "📝 Register",
		"make_deposit":    "💰 Make deposit",
	},
	"es": {
		"instruction":     "📘 Instrucción",
		"support":         "🆘 Soporte",
		"change_language": "🌐 Cambiar idioma",
		"get_signal":      "📈 Obtener señal",
		"back_to_menu":    "⬅️ Volver al menú",
		"subscribe":       "📡 Suscribirse",
		"register":        "📝 Registrarse",
		"make_deposit":    "💰 Hacer depósito",
	},
	"hi": {
		"instruction":     "📘 निर्देश",
		"support":         "🆘 सपोर्ट",
		"change_language": "🌐 भाषा बदलें",
		"get_signal":      "📈 सिग्नल प्राप्त करें",
		"back_to_menu":    "⬅️ मेनू पर वापस",
		"subscribe":       "📡 सब्सक्राइब करें",
		"register":        "📝 रजिस्टर करें",
		"make_deposit":    "💰 डिपॉज़िट करें",
	},
}

var mainMenuText = map[string]string{
	"ru": "📋 <b>Главное меню</b>",
	"en": "📋 <b>Main menu</b>",
	"es": "📋 <b>Menú principal</b>",
	"hi": "📋 <b>मुख्य मेनू</b>",
}

var instructionText = map[string]string{
	"ru": "📘 <b>Инструкция</b>\n\n1️⃣ Нажмите «📈 Получить сигнал».\n2️⃣ Пройдите шаги: подписка, регистрация, депозит.\n3️⃣ После всех обязательных шагов бот откроет доступ к мини-аппе.",
	"en": "📘 <b>Instruction</b>\n\n1️⃣ Press “📈 Get signal”.\n2️⃣ Complete the steps: subscription, registration, deposit.\n3️⃣ Once all required steps are done, the bot opens access to the mini-app.",
	"es": "📘 <b>Instrucción</b>\n\n1️⃣ Pulsa “📈 Obtener señal”.\n2️⃣ Completa los pasos: suscripción, registro, depósito.\n3️⃣ Tras los pasos obligatorios, el bot abrirá acceso a la mini-app.",
	"hi": "📘 <b>निर्देश</b>\n\n1️⃣ “📈 सिग्नल प्राप्त करें” दबाएँ।\n2️⃣ सभी स्टेप पूरे करें: सब्सक्रिप्शन, रजिस्ट्रेशन, डिपॉज़िट।\n3️⃣ सभी ज़रूरी स्टेप के बाद बॉट मिनी-ऐप का एक्सेस खोलेगा।",
}

var subscriptionText = map[string]string{
	"ru": "📡 <b>Шаг 1. Подписка на канал</b>\n\nПодпишитесь на канал по кнопке ниже.\nКак только вы подпишетесь, бот автоматически переведёт вас к следующему шагу.",
	"en": "📡 <b>Step 1. Channel subscription</b>\n\nSubscribe to the channel using the button below.\nAs soon as you subscribe, the bot moves you to the next step automatically.",
	"es": "📡 <b>Paso 1. Suscripción al canal</b>\n\nSuscríbete al canal con el botón de abajo.\nEn cuanto te suscribas, el bot te llevará al siguiente paso automáticamente.",
	"hi": "📡 <b>स्टेप 1. चैनल सब्सक्रिप्शन</b>\n\nनीचे दिए बटन से चैनल सब्सक्राइब करें।\nसब्सक्राइब करते ही बॉट आपको अगले स्टेप पर ले जाएगा।",
}

var registrationText = map[string]string{
	"ru": "📝 <b>Шаг 2. Регистрация у брокера</b>\n\nНажмите «📝 Зарегистрироваться» и завершите регистрацию на сайте брокера.\nКогда брокер пришлёт подтверждение, бот автоматически отправит следующий шаг.",
	"en": "📝 <b>Step 2. Broker registration</b>\n\nPress “📝 Register” and complete registration on the broker website.\nWhen the broker confirms it, the bot sends the next step automatically.",
	"es": "📝 <b>Paso 2. Registro con el bróker</b>\n\nPulsa “📝 Registrarse» y completa el registro en la web del bróker.\nCuando el bróker lo confirme, el bot enviará el siguiente paso automáticamente.",
	"hi": "📝 <b>स्टेप 2. ब्रोकर रजिस्ट्रेशन</b>\n\n“📝 रजिस्टर करें” दबाकर ब्रोकर की साइट पर रजिस्ट्रेशन पूरा करें।\nब्रोकर की पुष्टि आते ही बॉट अगला स्टेप भेज देगा।",
}

// deposit text takes required and current sums, already formatted.
var depositText = map[string]string{
	"ru": "💰 <b>Шаг 3. Депозит</b>\n\nМинимальная сумма депозита для доступа: <b>%s$</b>.\nСумма ваших депозитов: <b>%s$</b>.\n\nСделайте депозит по кнопке ниже. После подтверждения бот откроет доступ.",
	"en": "💰 <b>Step 3. Deposit</b>\n\nMinimum deposit for access: <b>%s$</b>.\nYour deposit sum: <b>%s$</b>.\n\nMake a deposit using the button below. After confirmation the bot opens access.",
	"es": "💰 <b>Paso 3. Depósito</b>\n\nDepósito mínimo para acceso: <b>%s$</b>.\nTu suma de depósitos: <b>%s$</b>.\n\nHaz un depósito con el botón de abajo. Tras la confirmación el bot abrirá el acceso.",
	"hi": "💰 <b>स्टेप 3. डिपॉज़िट</b>\n\nएक्सेस के लिए न्यूनतम डिपॉज़िट: <b>%s$</b>।\nआपके डिपॉज़िट की राशि: <b>%s$</b>।\n\nनीचे दिए बटन से डिपॉज़िट करें। पुष्टि के बाद बॉट एक्सेस खोल देगा।",
}

var accessOpenText = map[string]string{
	"ru": "✅ <b>Доступ открыт</b>\n\nТеперь кнопка «📈 Получить сигнал» открывает мини-аппу.",
	"en": "✅ <b>Access granted</b>\n\nThe “📈 Get signal” button now opens the mini-app.",
	"es": "✅ <b>Acceso abierto</b>\n\nEl botón “📈 Obtener señal” ahora abre la mini-app.",
	"hi": "✅ <b>एक्सेस खुल गया</b>\n\nअब “📈 सिग्नल प्राप्त करें” बटन मिनी-ऐप खोलता है।",
}

var vipGrantedText = map[string]string{
	"ru": "👑 <b>Вы получили VIP-доступ</b>.\nТеперь будет открываться VIP-мини-аппа.",
	"en": "👑 <b>You have VIP access</b>.\nThe VIP mini-app will open from now on.",
	"es": "👑 <b>Tienes acceso VIP</b>.\nA partir de ahora se abrirá la mini-app VIP.",
	"hi": "👑 <b>आपको VIP एक्सेस मिल गया</b>।\nअब VIP मिनी-ऐप खुलेगा।",
}

// limited texts take the relevant threshold, already formatted.
var limitedBasicText = map[string]string{
	"ru": "💎 <b>Доступ к боту ограничен</b>\n\nПополните аккаунт для активации бота.\nМинимальная сумма депозита: <b>%s$</b>.",
	"en": "💎 <b>Access to the bot is limited</b>\n\nTop up your account to activate the bot.\nMinimum deposit: <b>%s$</b>.",
	"es": "💎 <b>Acceso al bot limitado</b>\n\nRecarga tu cuenta para activar el bot.\nDepósito mínimo: <b>%s$</b>.",
	"hi": "💎 <b>बॉट का एक्सेस सीमित है</b>\n\nबॉट चालू करने के लिए खाता टॉप-अप करें।\nन्यूनतम डिपॉज़िट: <b>%s$</b>।",
}

var limitedVIPText = map[string]string{
	"ru": "💎 <b>Доступ к платинум версии ограничен</b>\n\nПополните аккаунт для активации VIP доступа.\nVIP-порог: <b>%s$</b>.",
	"en": "💎 <b>Platinum access limited</b>\n\nTop up your account to activate VIP access.\nVIP threshold: <b>%s$</b>.",
	"es": "💎 <b>Acceso platino limitado</b>\n\nRecarga tu cuenta para activar el acceso VIP.\nUmbral VIP: <b>%s$</b>.",
	"hi": "💎 <b>प्लैटिनम एक्सेस सीमित है</b>\n\nVIP एक्सेस चालू करने के लिए खाता टॉप-अप करें।\nVIP सीमा: <b>%s$</b>।",
}

var configErrorText = map[string]string{
	"ru": "⚠️ <b>Ошибка конфигурации</b>\n\nВ админке не задана ссылка или порог для этого шага. Свяжитесь с админом.",
	"en": "⚠️ <b>Configuration error</b>\n\nA link or threshold for this step is not configured. Contact the admin.",
	"es": "⚠️ <b>Error de configuración</b>\n\nFalta un enlace o umbral para este paso. Contacta con el admin.",
	"hi": "⚠️ <b>कॉन्फ़िगरेशन त्रुटि</b>\n\nइस स्टेप के लिए लिंक या सीमा सेट नहीं है। एडमिन से संपर्क करें।",
}

var langTitles = []struct {
	Code  string
	Title string
}{
	{"ru", "Русский 🇷🇺"},
	{"en", "English 🇬🇧"},
	{"es", "Español 🇪🇸"},
	{"hi", "हिन्दी 🇮🇳"},
}

const chooseLanguageText = "🌐 <b>Выбор языка интерфейса</b>\n\nChoose your language 👇"

func text(m map[string]string, lang string) string {
	if v, ok := m[lang]; ok {
		return v
	}
	return m["en"]
}

func label(lang, key string) string {
	if m, ok := menuLabels[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return menuLabels["en"][key]
}
