package progression

// Storage keys for the persisted progression state. The names carry the
// version suffixes of the original mobile release so an installation's
// saved progress survives the migration to this backend.
const (
	KeyTicketsBalance  = "tickets_balance_v1"
	KeyUnlockedExtras  = "tickets_unlocked_v1"
	KeyUnlockedStories = "stories_unlocked_v1"
	KeySolvedPuzzles   = "crossword_solved_v2"
)

// Cosmetic preference keys. Not owned by the progression core, but cleared
// together with it on a full reset.
const (
	KeyTicketsIntroSeen      = "tickets_intro_seen_v1"
	KeyCrosswordIntroSeen    = "crossword_intro_seen_v2"
	KeyCrosswordProgress     = "crossword_progress_v1"
	KeyCrosswordCompleted    = "crossword_completed_v1"
	KeyPlacesFavorites       = "places_favorites_v1"
	KeyOnboardingSeen        = "app_onboarding_seen_v1"
	KeySettingsVibration     = "settings_vibration_v1"
	KeySettingsNotifications = "settings_notifications_v1"
)

// RewardPerSolve is the flat ticket reward for the first correct solve of a
// puzzle. Difficulty does not change the payout.
const RewardPerSolve = 5

// ResetKeys returns every key cleared by a full progress reset.
func ResetKeys() []string {
	return []string{
		KeyTicketsBalance,
		KeyUnlockedExtras,
		KeyUnlockedStories,
		KeySolvedPuzzles,
		KeyTicketsIntroSeen,
		KeyCrosswordIntroSeen,
		KeyCrosswordProgress,
		KeyCrosswordCompleted,
		KeyPlacesFavorites,
		KeyOnboardingSeen,
		KeySettingsVibration,
		KeySettingsNotifications,
	}
}
