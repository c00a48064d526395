package models

type CommandType string

const (
	CommandStart      CommandType = "/start"
	CommandHelp       CommandType = "/help"
	CommandEnable     CommandType = "/enable"
	CommandDisable    CommandType = "/disable"
	CommandStatus     CommandType = "/status"
	CommandTags       CommandType = "/tags"
	CommandSetTags    CommandType = "/settags"
	CommandAddTags    CommandType = "/addtags"
	CommandRemoveTags CommandType = "/removetags"
	CommandDebug      CommandType = "/debug"
	CommandUnknown    CommandType = "unknown"
)

type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

func (t ChatType) IsGroup() bool {
	return t == ChatGroup || t == ChatSupergroup
}

type Command struct {
	Type      CommandType
	ChatID    int64
	ChatType  ChatType
	ChatTitle string
	UserID    int64
	Username  string
	Text      string
	Args      []string
}

func ParseCommandType(name string) CommandType {
	commandType := CommandType(name)

	switch commandType {
	case CommandStart, CommandHelp, CommandEnable, CommandDisable, CommandStatus,
		CommandTags, CommandSetTags, CommandAddTags, CommandRemoveTags, CommandDebug:
		return commandType
	default:
		return CommandUnknown
	}
}
