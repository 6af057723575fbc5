// Package classifier turns a feature vector into a phishing probability.
//
// A Scorer is chosen once at startup. The persisted variant reads a model
// exported earlier (phishing_detector.json, feature_names.json and the
// optional model_metadata.json). When those files are missing or broken
// the synthetic variant is trained in-process from a fixed seed, so every
// start produces the same weights, and ModelInfo reports the fallback and
// why it happened.
//
// Both variants are logistic regressions over standardised inputs. The
// input row is built from the model's own ordered schema: a feature the
// collectors did not produce scores as 0 and booleans score as 0 or 1.
package classifier
