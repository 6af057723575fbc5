// Package domain collects registration-level features of a URL's host:
// whether the registrable label contains digits, how many subdomain labels
// precede it, and how old the registration is.
//
// The registrable domain is found with the public suffix list, so
// "login.example.co.uk" yields "example.co.uk" and one subdomain label.
// Registration age comes from WHOIS. It is -1 whenever the age is not
// known: the lookup failed, timed out, the record had no creation date,
// the date could not be parsed, or the host is an IP literal. Zero is a
// real value meaning the domain was registered today.
package domain
