package utils

import "time"

// Game Configuration
const (
	SlotEmoji    = "🎰"
	JackpotValue = 64 // the 🎰 dice reports 1..64, 64 is three sevens
	RevealDelay  = 1500 * time.Millisecond
	MuteDuration = 5 * time.Minute

	// ThrottleBuffer is added on top of the transport's retry-after hint
	ThrottleBuffer = time.Second
)

// Admin panel callback data
const (
	CallbackToggle    = "toggle_slot"
	CallbackShowStats = "show_stats"
	CallbackShowHelp  = "show_help"
)

// Panel buttons
const (
	ButtonActivate   = "Активировать слот"
	ButtonDeactivate = "Деактивировать слот"
	ButtonStats      = "Показать статистику"
	ButtonHelp       = "Шпаргалка"
)

// UI Messages
const (
	WelcomeMessage     = "🎰 Добро пожаловать в бот-слот!\nИспользуйте команды /spin, !крутить, крутить или 🎰 для игры в слот.\nТекущий статус слота: %s."
	PanelHeader        = "Панель управления слотом:\n"
	PanelBody          = "Слот %s!\nОбщее количество круток: %d"
	NoRightsMessage    = "У вас нет прав для этого действия!"
	ToggleAck          = "Слот %s."
	ToggleAlreadyAck   = "Слот уже %s."
	StatsMessage       = "Общее количество круток: %d"
	StatsJackpotsLine  = "\nДжекпотов: %d"
	HelpMessage        = "📋 /admin - панель, /spin, !крутить/крутить/🎰 - слот. Команды и лишние сообщения удаляются при активном слоте. Статус: %s, круток: %d"
	CleanupDoneMessage = "Команды успешно очищены."

	WinMessage         = "💎 %s, ДЖЕКПОТ!"
	LossMessage        = "😔 %s, проигрыш"
	AnonymousActorLink = `<a href="tg://user?id=%d">Игрок</a>`
	AdminSpinReport    = "Пользователь %s сыграл в слот. Результат: %s\nОбщее количество круток: %d"

	MuteAnnouncement = "Чат замьючен на 5 минут из-за джекпота!"
	MuteFailed       = "Ошибка при мьюте чата."

	GiftSentGroup      = "🎁 %s получает подарок: %s"
	GiftSentAdmins     = "Подарок %s отправлен пользователю %s."
	GiftNoHandleAdmins = "Победитель %s не имеет username, подарок не отправлен."
	GiftFailedAdmins   = "Не удалось отправить подарок %s: %s"
	GiftErrorAdmins    = "Непредвиденная ошибка при отправке подарка %s: %s"
	GiftApology        = "😔 %s, к сожалению, подарок отправить не удалось. Администраторы уже уведомлены."
)
