package templates

import "github.com/a-h/templ"

func Login(action, username string, errs Errors) templ.Component {
	return component(func(p *page) {
		p.rawf(`<h1>Log in</h1><form method="post" action="%s">`, action)
		p.input(errs, "Username or email", "username", "text", username)
		p.input(errs, "Password", "password", "password", "")
		p.raw(`<button type="submit">Log in</button></form>`)
	})
}

func SignUp(action, username, email string, errs Errors) templ.Component {
	return component(func(p *page) {
		p.rawf(`<h1>Sign up</h1><form method="post" action="%s">`, action)
		p.input(errs, "Username", "username", "text", username)
		p.input(errs, "Email", "email", "email", email)
		p.input(errs, "Password", "password", "password", "")
		p.raw(`<button type="submit">Create account</button></form>`)
	})
}
