/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package uri

import "github/sabouaram/mongocluster/errors"

const (
	ErrorMissingScheme errors.CodeError = iota + errors.MinPkgURI
	ErrorMissingSlash
	ErrorEmptyHostList
	ErrorInvalidHost
	ErrorInvalidPort
	ErrorInvalidOption
	ErrorInvalidReadPreference
	ErrorInvalidWriteConcern
	ErrorValidateSettings
	ErrorLoadSettingsFile
)

func init() {
	if !errors.ExistInMapMessage(ErrorMissingScheme) {
		errors.RegisterIdFctMessage(ErrorMissingScheme, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorMissingScheme:
		return "connection string is missing the 'mongodb://' scheme"
	case ErrorMissingSlash:
		return "URI contains options without trailing slash"
	case ErrorEmptyHostList:
		return "connection string has an empty host list"
	case ErrorInvalidHost:
		return "connection string host entry is malformed"
	case ErrorInvalidPort:
		return "connection string port is not a valid number"
	case ErrorInvalidOption:
		return "connection string option value is malformed"
	case ErrorInvalidReadPreference:
		return "read preference mode or tag set is invalid"
	case ErrorInvalidWriteConcern:
		return "write concern option combination is invalid"
	case ErrorValidateSettings:
		return "client settings failed validation"
	case ErrorLoadSettingsFile:
		return "unable to load client settings from file"
	}

	return ""
}
