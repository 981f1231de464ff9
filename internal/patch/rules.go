package patch

// Rules is the rule table used by the generator. Append new rules as header
// quirks turn up; existing entries keep their position.
var Rules = Table{
	{
		// SDL_HAT_* are hat switch bit positions returned as Uint8.
		Name:   "joystick-hat",
		Module: "joystick",
		Match:  HasPrefix("SDL_HAT_"),
		Apply:  CastTo("Uint8"),
	},
	{
		Name:   "keycode-keys",
		Module: "keycode",
		Match:  HasPrefix("SDLK_"),
		Apply:  CastTo("SDL_Keycode"),
	},
	{
		Name:   "keycode-mods",
		Module: "keycode",
		Match:  HasPrefix("SDL_KMOD_"),
		Apply:  CastTo("SDL_Keymod"),
	},
	{
		Name:   "mouse-button-masks",
		Module: "mouse",
		Match:  HasPrefixSuffix("SDL_BUTTON_", "MASK"),
		Apply:  CastTo("SDL_MouseButtonFlags"),
	},
	{
		Name:   "pen-input",
		Module: "pen",
		Match:  HasPrefix("SDL_PEN_INPUT_"),
		Apply:  CastTo("SDL_PenInputFlags"),
	},
}
