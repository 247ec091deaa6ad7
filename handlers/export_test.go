package handlers

import "evote-backend/translate"

// SetTranslator lets the external test package swap the translate client.
func SetTranslator(c *translate.Client) { translator = c }
