package constants

import "time"

// Centralized constants for headers, env keys, routes and messages.
const (
	HeaderAuthorization = "Authorization"
	HeaderCronSecret    = "X-Cron-Secret"

	BearerPrefix = "Bearer "

	// gin context key holding the authenticated user id
	ContextUserID = "userID"

	ServiceName = "avatar-arena"
)

// Battle tuning that is not part of the balance file.
const (
	BattleLogCapacity  = 20
	RoomRetention      = 24 * time.Hour
	MaxCASAttempts     = 4
	DefaultTrainingTTL = 30 * time.Minute
)

// Routes used by the backend router
const (
	RouteAPIPrefix        = "/api"
	RouteVersion          = "/version"
	RouteHealth           = "/healthz"
	RouteAbilities        = "/abilities"
	RouteRooms            = "/rooms"
	RouteRoomByID         = "/rooms/:roomID"
	RouteRoomJoin         = "/rooms/:roomID/join"
	RouteBattleAction     = "/battle/action"
	RouteBattleSetBet     = "/battle/set-bet"
	RouteBattleSurrender  = "/battle/surrender"
	RouteBattleAbandon    = "/battle/abandon"
	RouteBetLimits        = "/players/:userID/bet-limits"
	RouteCollectReward    = "/rewards/collect"
	RouteCleanupRooms     = "/maintenance/cleanup-rooms"
	RouteTraining         = "/training"
	RouteTrainingByID     = "/training/:sessionID"
	RouteTrainingAction   = "/training/:sessionID/action"
	ParamRoomID           = "roomID"
	ParamUserID           = "userID"
	ParamSessionID        = "sessionID"
	QueryUserID           = "userId"
	CleanupLockKey        = "cleanup-rooms"
	TrainingSweepInterval = time.Minute
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Error kinds returned in the "error" field.
const (
	ErrKindValidation = "validation"
	ErrKindForbidden  = "forbidden"
	ErrKindNotFound   = "not_found"
	ErrKindConflict   = "conflict"
	ErrKindInternal   = "internal"
	ErrKindAuth       = "unauthorized"
)

// User-facing messages. The game is played in Portuguese.
const (
	MsgInvalidRequest     = "Requisição inválida"
	MsgMissingFields      = "Campos obrigatórios ausentes"
	MsgRoomNotFound       = "Sala não encontrada"
	MsgRoomFinished       = "A batalha já terminou"
	MsgNotParticipant     = "Você não participa desta sala"
	MsgRoomNotActive      = "A batalha não está ativa"
	MsgRoomNotWaiting     = "A sala não está aguardando jogadores"
	MsgRoomFull           = "A sala já está cheia"
	MsgNotYourTurn        = "Não é o seu turno"
	MsgUnknownAction      = "Ação desconhecida"
	MsgUnknownAbility     = "Habilidade desconhecida"
	MsgInsufficientEnergy = "Energia insuficiente"
	MsgAbilityOnCooldown  = "Habilidade em recarga"
	MsgAvatarNotFound     = "Avatar não encontrado"
	MsgAvatarUnavailable  = "Avatar indisponível para batalha"
	MsgPlayerNotFound     = "Jogador não encontrado"
	MsgRewardNotFound     = "Recompensa não encontrada ou já coletada"
	MsgSessionNotFound    = "Sessão de treino não encontrada"
	MsgBetsDisabled       = "Apostas indisponíveis para o seu nível e saldo"
	MsgInternal           = "Erro interno do servidor"
	MsgAuthRequired       = "Autenticação necessária"
	MsgInvalidToken       = "Token inválido"
	MsgIdentityMismatch   = "Usuário não corresponde à sessão"
	MsgMissingCombatant   = "A sala ainda não tem os dois combatentes"
	MsgRoomConflict       = "A sala foi alterada por outra jogada, tente novamente"
	MsgCronForbidden      = "Chave de manutenção inválida"
	MsgBetMinimumFmt      = "Aposta mínima é %d moedas"
	MsgBetMaximumFmt      = "Aposta máxima é %d moedas"
)

// Logging field names
const (
	LogFieldRoomID    = "room_id"
	LogFieldUserID    = "user_id"
	LogFieldAction    = "action"
	LogFieldRole      = "role"
	LogFieldAbilityID = "ability_id"
	LogFieldRewardID  = "reward_id"
	LogFieldSessionID = "session_id"
	LogFieldAttempt   = "attempt"
	LogFieldReason    = "reason"
	LogFieldWinner    = "winner"
	LogFieldAddr      = "addr"
	LogFieldPath      = "path"
	LogFieldCount     = "count"
	LogFieldAvatarID  = "avatar_id"
)
