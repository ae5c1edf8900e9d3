package blocks

// Style enums map editor choices to CSS classes. Unset or unrecognised
// values use the documented default.

func heroHeightClass(v string) string {
	switch v {
	case "full", "medium":
		return "hero--" + v
	}
	return "hero--large"
}

func alignClass(v string) string {
	switch v {
	case "left", "right":
		return "text-" + v
	}
	return "text-center"
}

// columnClasses returns the grid class of every column of a content layout.
func columnClasses(layout string) []string {
	switch layout {
	case "two":
		return []string{"col-6", "col-6"}
	case "twoWideLeft":
		return []string{"col-8", "col-4"}
	case "twoWideRight":
		return []string{"col-4", "col-8"}
	case "three":
		return []string{"col-4", "col-4", "col-4"}
	}
	return []string{"col-12"}
}

func contentBackgroundClass(v string) string {
	switch v {
	case "gray", "primary", "dark":
		return "bg-" + v
	}
	return "bg-white"
}

func paddingSize(v string) string {
	switch v {
	case "none", "small", "large":
		return v
	}
	return "medium"
}

func ctaBackground(v string) string {
	switch v {
	case "secondary", "dark", "light":
		return v
	}
	return "primary"
}

// ctaInverted reports whether CTA buttons need the outline style to stay
// readable on the given background.
func ctaInverted(background string) bool {
	switch ctaBackground(background) {
	case "primary", "secondary", "dark":
		return true
	}
	return false
}

func galleryColumns(n FlexInt) int {
	if n >= 2 && n <= 5 {
		return int(n)
	}
	return 3
}

func buttonClass(style string) string {
	switch style {
	case "secondary", "outline":
		return "btn btn-" + style
	}
	return "btn btn-primary"
}
