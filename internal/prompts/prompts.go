// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompts holds the canned example prompts offered on the
// generator page as one-click starting points.
package prompts

// examples is the display order. Clicking one overwrites the prompt field
// with the exact literal text.
var examples = []string{
	"A serene Japanese garden with cherry blossoms, a koi pond and soft morning light, highly detailed",
	"Cyberpunk city street at night, neon signs reflecting in rain puddles, cinematic lighting",
	"A majestic lion wearing a golden crown, oil painting, dramatic chiaroscuro",
	"Cozy log cabin in a snowy forest under the aurora borealis, warm light in the windows, digital art",
	"An astronaut riding a horse across a Martian desert at golden hour, photorealistic",
	"Underwater palace built from coral, schools of bioluminescent fish, fantasy concept art",
}

// List returns the example prompts. A copy is returned so callers cannot
// reorder or mutate the canonical list.
func List() []string {
	out := make([]string, len(examples))
	copy(out, examples)
	return out
}
