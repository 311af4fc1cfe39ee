package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrLearnerAccessOnly ErrCode = "LEARNER_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Tryout session ────────────────────────────────────────────────
	ErrExamNotAvailable        ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamActive              ErrCode = "EXAM_ACTIVE"
	ErrNoQuestions             ErrCode = "NO_QUESTIONS"
	ErrSessionNotFound         ErrCode = "SESSION_NOT_FOUND"
	ErrSessionAlreadyStarted   ErrCode = "SESSION_ALREADY_STARTED"
	ErrSessionNotStarted       ErrCode = "SESSION_NOT_STARTED"
	ErrSessionAlreadySubmitted ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrResultNotReady          ErrCode = "RESULT_NOT_READY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrSessionActive:
		return "Anda sudah login di perangkat lain."
	case ErrSessionInvalidated:
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrLearnerAccessOnly:
		return "Sumber daya ini terbatas untuk peserta."
	case ErrAdminAccessOnly:
		return "Sumber daya ini terbatas untuk administrator."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrActionForbidden:
		return "Tindakan ini tidak diperbolehkan."

	// ─── Tryout session ────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "Tryout ini saat ini tidak tersedia."
	case ErrExamActive:
		return "Tryout yang sudah aktif tidak dapat diubah."
	case ErrNoQuestions:
		return "Tryout ini tidak memiliki pertanyaan."
	case ErrSessionNotFound:
		return "Sesi pengerjaan tidak ditemukan."
	case ErrSessionAlreadyStarted:
		return "Sesi pengerjaan sudah dimulai."
	case ErrSessionNotStarted:
		return "Sesi pengerjaan belum dimulai."
	case ErrSessionAlreadySubmitted:
		return "Jawaban Anda sudah dikumpulkan."
	case ErrResultNotReady:
		return "Hasil belum tersedia. Kumpulkan jawaban terlebih dahulu."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
